//go:build integration

package relay_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"hsaonboard/pkg/domain"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/audit/relay"
	auditpg "hsaonboard/pkg/platform/audit/store/postgres"
	"hsaonboard/pkg/testutil"
	"hsaonboard/pkg/testutil/containers"
)

const testTopic = "hsa.audit.events.test"

// TestRelayDeliversOutboxToAuditTrail runs the full path: an event written
// to the outbox is published to Kafka and materialized back into the
// queryable audit_events table.
func TestRelayDeliversOutboxToAuditTrail(t *testing.T) {
	migration, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	pc := containers.NewPostgresContainer(t, migration)
	rp := containers.NewRedpandaContainer(t)

	db, err := sql.Open("postgres", pc.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := auditpg.New(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	producer, err := kgo.NewClient(kgo.SeedBrokers(rp.Broker))
	require.NoError(t, err)
	t.Cleanup(producer.Close)
	require.NoError(t, relay.EnsureTopic(ctx, producer, testTopic))

	consumerClient, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumerGroup("audit-materializer-test"),
		kgo.ConsumeTopics(testTopic),
		kgo.DisableAutoCommit(),
	)
	require.NoError(t, err)
	t.Cleanup(consumerClient.Close)

	log := testutil.NewTestLogger()
	outboxRelay := relay.New(store, producer, testTopic, log, relay.WithPollInterval(100*time.Millisecond))
	consumer := relay.NewConsumer(consumerClient, store, log)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go func() { _ = outboxRelay.Run(workerCtx) }()
	go func() { _ = consumer.Run(workerCtx) }()

	appID := domain.NewApplicationID()
	event := audit.Event{
		Category:      audit.CategoryCompliance,
		Timestamp:     time.Now().UTC(),
		ApplicationID: appID,
		Subject:       "application",
		Action:        string(audit.EventApplicationCreated),
		ActorID:       "applicant",
	}
	require.NoError(t, store.Append(ctx, event))

	require.Eventually(t, func() bool {
		events, err := store.ListByApplication(ctx, appID)
		return err == nil && len(events) == 1
	}, 30*time.Second, 200*time.Millisecond, "event never materialized")

	events, err := store.ListByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, string(audit.EventApplicationCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)

	// The outbox entry is marked published and not re-delivered.
	pending, err := store.PendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
