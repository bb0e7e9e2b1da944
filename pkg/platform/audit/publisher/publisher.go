// Package publisher provides a fail-closed audit publisher for regulatory
// events.
//
// Publisher emits compliance events with synchronous, fail-closed semantics:
// the caller blocks until the outbox write succeeds. If the write fails, an
// error is returned and the calling operation MUST fail.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "hsaonboard/pkg/platform/audit"
)

// Publisher emits audit events through the outbox-backed store.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a publisher. The store must be outbox-backed for guaranteed
// delivery of compliance events.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit writes an audit event to the store. For compliance-category events
// this is fail-closed: if the audit cannot be persisted, the business
// operation must not proceed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if event.Category == audit.CategoryCompliance {
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
					"action", event.Action,
					"application_id", event.ApplicationID,
					"error", err,
				)
			}
			return fmt.Errorf("compliance audit persistence failed: %w", err)
		}
		// Non-compliance events are best-effort; log and continue.
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"error", err,
			)
		}
		return nil
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}
	return nil
}
