// Package memory provides an in-memory application store for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"hsaonboard/internal/application/models"
	"hsaonboard/internal/application/service"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	mu   sync.RWMutex
	apps map[domain.ApplicationID]*models.Application
}

func New() *Store {
	return &Store{apps: make(map[domain.ApplicationID]*models.Application)}
}

func (s *Store) Create(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, "application already exists")
	}
	clone := *app
	s.apps[app.ID] = &clone
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	clone := *app
	return &clone, nil
}

func (s *Store) List(ctx context.Context, filter service.ListFilter) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Application
	for _, app := range s.apps {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		clone := *app
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if filter.Offset >= len(all) {
		return nil, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (s *Store) Update(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	clone := *app
	s.apps[app.ID] = &clone
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	app.Status = status
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	delete(s.apps, id)
	return nil
}

func (s *Store) ExistsBySSNHash(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.apps {
		if app.SSN.Hash() == hash {
			return true, nil
		}
	}
	return false, nil
}
