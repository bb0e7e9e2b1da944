package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	id "hsaonboard/pkg/domain"
	audit "hsaonboard/pkg/platform/audit"
)

// Store is an in-memory audit store for tests and local development.
// There is no outbox here; Append materializes directly.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
	seen   map[uuid.UUID]struct{}
}

func New() *Store {
	return &Store{seen: make(map[uuid.UUID]struct{})}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return nil
	}
	s.seen[eventID] = struct{}{}
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ApplicationID == applicationID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Events returns a snapshot of every stored event, oldest first.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
