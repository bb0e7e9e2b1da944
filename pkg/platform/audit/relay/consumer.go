package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	id "hsaonboard/pkg/domain"
	audit "hsaonboard/pkg/platform/audit"
)

// Consumer reads audit events from Kafka and materializes them into the
// queryable store via AppendWithID. Materialization is idempotent, so
// at-least-once delivery from the relay is safe.
type Consumer struct {
	client *kgo.Client
	store  audit.Store
	logger *slog.Logger
}

// NewConsumer wraps a kgo client already configured to consume the audit
// topic within a consumer group.
func NewConsumer(client *kgo.Client, store audit.Store, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, store: store, logger: logger}
}

// Run polls Kafka until ctx is cancelled. Records that cannot be decoded
// are logged and skipped; persistence failures leave offsets uncommitted
// so the batch is redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "audit fetch error",
				"topic", topic, "partition", partition, "error", err)
		})

		var failed bool
		fetches.EachRecord(func(record *kgo.Record) {
			if failed {
				return
			}
			if err := c.materialize(ctx, record.Value); err != nil {
				c.logger.ErrorContext(ctx, "audit materialize failed", "error", err)
				failed = true
			}
		})
		if failed {
			continue
		}

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.WarnContext(ctx, "audit offset commit failed", "error", err)
		}
	}
}

// wireEvent mirrors the outbox payload written by the postgres store.
type wireEvent struct {
	ID            string  `json:"ID"`
	Category      string  `json:"Category"`
	Timestamp     string  `json:"Timestamp"`
	ApplicationID string  `json:"ApplicationID"`
	Subject       string  `json:"Subject"`
	Action        string  `json:"Action"`
	Decision      string  `json:"Decision"`
	Reason        string  `json:"Reason"`
	RiskScore     float64 `json:"RiskScore"`
	SubjectIDHash string  `json:"SubjectIDHash"`
	RequestID     string  `json:"RequestID"`
	ActorID       string  `json:"ActorID"`
	ClientIP      string  `json:"ClientIP"`
	UserAgent     string  `json:"UserAgent"`
}

func (c *Consumer) materialize(ctx context.Context, payload []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		// Malformed payload will never decode; drop it rather than wedge
		// the partition.
		c.logger.ErrorContext(ctx, "undecodable audit payload dropped", "error", err)
		return nil
	}

	eventID, err := uuid.Parse(wire.ID)
	if err != nil {
		c.logger.ErrorContext(ctx, "audit payload with invalid id dropped", "id", wire.ID)
		return nil
	}

	event := audit.Event{
		Category:      audit.EventCategory(wire.Category),
		Subject:       wire.Subject,
		Action:        wire.Action,
		Decision:      wire.Decision,
		Reason:        wire.Reason,
		RiskScore:     wire.RiskScore,
		SubjectIDHash: wire.SubjectIDHash,
		RequestID:     wire.RequestID,
		ActorID:       wire.ActorID,
		ClientIP:      wire.ClientIP,
		UserAgent:     wire.UserAgent,
	}
	if ts, err := time.Parse(time.RFC3339Nano, wire.Timestamp); err == nil {
		event.Timestamp = ts
	} else {
		event.Timestamp = time.Now()
	}
	if wire.ApplicationID != "" {
		appID, err := id.ParseApplicationID(wire.ApplicationID)
		if err == nil {
			event.ApplicationID = appID
		}
	}

	if err := c.store.AppendWithID(ctx, eventID, event); err != nil {
		return fmt.Errorf("append audit event %s: %w", eventID, err)
	}
	return nil
}
