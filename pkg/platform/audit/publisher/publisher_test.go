package publisher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "hsaonboard/pkg/domain"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("db down")
}

func (failingStore) AppendWithID(context.Context, uuid.UUID, audit.Event) error {
	return errors.New("db down")
}

func (failingStore) ListByApplication(context.Context, id.ApplicationID) ([]audit.Event, error) {
	return nil, errors.New("db down")
}

func TestEmitPersistsEvent(t *testing.T) {
	store := auditmem.New()
	p := publisher.New(store)

	appID := id.NewApplicationID()
	err := p.Emit(context.Background(), audit.Event{
		ApplicationID: appID,
		Subject:       "application",
		Action:        string(audit.EventDecisionMade),
		Decision:      "approve",
	})
	require.NoError(t, err)

	events, err := store.ListByApplication(context.Background(), appID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEmitRequiresAction(t *testing.T) {
	p := publisher.New(auditmem.New())

	err := p.Emit(context.Background(), audit.Event{Subject: "application"})
	require.Error(t, err)
}

func TestEmitFailClosedForCompliance(t *testing.T) {
	p := publisher.New(failingStore{})

	err := p.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventDecisionMade),
		Timestamp: time.Now(),
	})
	require.Error(t, err, "compliance events must fail closed")
}

func TestEmitBestEffortForOperations(t *testing.T) {
	p := publisher.New(failingStore{})

	err := p.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventDocumentUploaded),
		Timestamp: time.Now(),
	})
	assert.NoError(t, err, "operations events are best-effort")
}
