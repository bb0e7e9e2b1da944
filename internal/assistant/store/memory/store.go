// Package memory provides an in-memory assistant history store for tests and
// local development.
package memory

import (
	"context"
	"sync"

	"hsaonboard/internal/assistant/models"
	"hsaonboard/pkg/domain"
)

type Store struct {
	mu        sync.RWMutex
	exchanges []*models.Exchange
}

func New() *Store {
	return &Store{}
}

func (s *Store) Save(ctx context.Context, exchange *models.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *exchange
	s.exchanges = append(s.exchanges, &clone)
	return nil
}

// History returns exchanges newest first. A nil application ID returns every
// exchange; otherwise only those linked to the application.
func (s *Store) History(ctx context.Context, applicationID domain.ApplicationID, limit, offset int) ([]*models.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Exchange
	for i := len(s.exchanges) - 1; i >= 0; i-- {
		e := s.exchanges[i]
		if !applicationID.IsNil() && e.ApplicationID != applicationID {
			continue
		}
		matched = append(matched, e)
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]*models.Exchange, len(matched))
	for i, e := range matched {
		clone := *e
		out[i] = &clone
	}
	return out, nil
}

// Count returns the total number of recorded exchanges.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges), nil
}
