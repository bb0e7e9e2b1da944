// Package memory provides an in-memory decision store for tests and local
// development.
package memory

import (
	"context"
	"sync"

	"hsaonboard/internal/decision"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	mu      sync.RWMutex
	records map[domain.ApplicationID][]*decision.Record
}

func New() *Store {
	return &Store{records: make(map[domain.ApplicationID][]*decision.Record)}
}

func (s *Store) Save(ctx context.Context, record *decision.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.ApplicationID] = append(s.records[record.ApplicationID], &clone)
	return nil
}

func (s *Store) LatestByApplication(ctx context.Context, id domain.ApplicationID) (*decision.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[id]
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no decision found for application")
	}
	clone := *records[len(records)-1]
	return &clone, nil
}

func (s *Store) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*decision.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[id]
	out := make([]*decision.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		clone := *records[i]
		out = append(out, &clone)
	}
	return out, nil
}
