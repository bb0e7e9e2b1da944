// Package memory provides an in-memory document store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"hsaonboard/internal/document/models"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]*models.Document
}

func New() *Store {
	return &Store{docs: make(map[domain.DocumentID]*models.Document)}
}

func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, "document already exists")
	}
	clone := *doc
	s.docs[doc.ID] = &clone
	return nil
}

func (s *Store) Update(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	clone := *doc
	s.docs[doc.ID] = &clone
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	clone := *doc
	return &clone, nil
}

func (s *Store) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.ApplicationID == id {
			clone := *doc
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) LatestByType(ctx context.Context, id domain.ApplicationID, docType models.Type) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Document
	for _, doc := range s.docs {
		if doc.ApplicationID != id || doc.Type != docType || doc.Superseded {
			continue
		}
		if latest == nil || doc.CreatedAt.After(latest.CreatedAt) {
			latest = doc
		}
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no document of this type for application")
	}
	clone := *latest
	return &clone, nil
}

func (s *Store) MarkSuperseded(ctx context.Context, id domain.ApplicationID, docType models.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ApplicationID == id && doc.Type == docType {
			doc.Superseded = true
		}
	}
	return nil
}
