// Package relay moves audit events from the transactional outbox to Kafka
// and materializes consumed events back into the queryable audit_events
// table. Kafka is the durable trail; the table serves read queries.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	auditpg "hsaonboard/pkg/platform/audit/store/postgres"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultBatchSize    = 100
)

// Relay polls the outbox table and publishes pending entries to Kafka.
type Relay struct {
	outbox       *auditpg.Store
	client       *kgo.Client
	topic        string
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

// Option configures the Relay.
type Option func(*Relay)

// WithPollInterval overrides how often the outbox is polled.
func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		r.pollInterval = d
	}
}

// WithBatchSize overrides how many entries are drained per poll.
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		r.batchSize = n
	}
}

// New creates a relay publishing outbox entries to topic.
func New(outbox *auditpg.Store, client *kgo.Client, topic string, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		outbox:       outbox,
		client:       client,
		topic:        topic,
		logger:       logger,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls the outbox until ctx is cancelled. Publish failures are logged
// and retried on the next tick; entries stay in the outbox until delivered.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				r.logger.WarnContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	entries, err := r.outbox.PendingOutbox(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("fetch pending outbox: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(entry.EventType),
			Value: entry.Payload,
		})
	}

	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		published = append(published, entry.ID)
	}
	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		// Entries will be re-published on the next tick; the consumer
		// side is idempotent so duplicates are harmless.
		return fmt.Errorf("mark published: %w", err)
	}

	r.logger.DebugContext(ctx, "audit outbox drained", "count", len(entries))
	return nil
}

// EnsureTopic creates the audit topic if it does not already exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}
