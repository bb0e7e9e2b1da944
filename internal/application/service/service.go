// Package service orchestrates application CRUD with audit emission. It keeps
// orchestration out of handlers and domain logic thin.
package service

import (
	"context"
	"log/slog"

	"hsaonboard/internal/application/models"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/requestcontext"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Store persists applications.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) error
	Delete(ctx context.Context, id domain.ApplicationID) error
	ExistsBySSNHash(ctx context.Context, hash string) (bool, error)
}

// ListFilter narrows List results.
type ListFilter struct {
	Status models.Status
	Limit  int
	Offset int
}

// AuditPublisher emits audit events for application lifecycle changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements application CRUD with the lifecycle rules: one
// application per SSN, edits and deletes only while pending.
type Service struct {
	store  Store
	audit  AuditPublisher
	logger *slog.Logger
}

func New(store Store, auditPub AuditPublisher, logger *slog.Logger) *Service {
	return &Service{store: store, audit: auditPub, logger: logger}
}

// Create persists a new application in StatusPending. A second application
// with the same SSN is rejected with a conflict.
func (s *Service) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	exists, err := s.store.ExistsBySSNHash(ctx, app.SSN.Hash())
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check existing applications", err)
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, "an application with this SSN already exists")
	}

	now := requestcontext.Now(ctx)
	app.ID = domain.NewApplicationID()
	app.Status = models.StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now

	if err := s.store.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create application", err)
	}

	// Creation is a compliance event; if the trail cannot be written the
	// creation must not be acknowledged.
	if err := s.audit.Emit(ctx, s.event(ctx, app, audit.EventApplicationCreated)); err != nil {
		return nil, err
	}
	return app, nil
}

// Get returns a single application by ID.
func (s *Service) Get(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	return s.store.GetByID(ctx, id)
}

// List returns applications matching the filter. Limits are clamped to keep
// result sets bounded.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*models.Application, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown status filter: "+string(filter.Status))
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.List(ctx, filter)
}

// Update replaces the applicant-entered fields of a pending application.
func (s *Service) Update(ctx context.Context, id domain.ApplicationID, updated *models.Application) (*models.Application, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.Mutable() {
		return nil, dErrors.New(dErrors.CodeConflict,
			"only pending applications can be updated; current status: "+string(existing.Status))
	}
	if updated.SSN.Hash() != existing.SSN.Hash() {
		exists, err := s.store.ExistsBySSNHash(ctx, updated.SSN.Hash())
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check existing applications", err)
		}
		if exists {
			return nil, dErrors.New(dErrors.CodeConflict, "an application with this SSN already exists")
		}
	}

	existing.FullName = updated.FullName
	existing.DateOfBirth = updated.DateOfBirth
	existing.Address = updated.Address
	existing.SSN = updated.SSN
	existing.EmployerName = updated.EmployerName
	existing.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update application", err)
	}

	if err := s.audit.Emit(ctx, s.event(ctx, existing, audit.EventApplicationUpdated)); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed for application update",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return existing, nil
}

// SetStatus transitions an application's lifecycle state. Used by the
// decision service after evaluation.
func (s *Service) SetStatus(ctx context.Context, id domain.ApplicationID, status models.Status) error {
	if !status.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown status: "+string(status))
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// Delete removes a pending application.
func (s *Service) Delete(ctx context.Context, id domain.ApplicationID) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Status.Mutable() {
		return dErrors.New(dErrors.CodeConflict,
			"only pending applications can be deleted; current status: "+string(existing.Status))
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete application", err)
	}

	// Deletion is compliance-relevant: the trail must show the record existed.
	return s.audit.Emit(ctx, s.event(ctx, existing, audit.EventApplicationDeleted))
}

func (s *Service) event(ctx context.Context, app *models.Application, action audit.AuditEvent) audit.Event {
	return audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		ApplicationID: app.ID,
		Subject:       "application",
		Action:        string(action),
		SubjectIDHash: app.SSN.Hash(),
		RequestID:     requestcontext.RequestID(ctx),
		ActorID:       requestcontext.Reviewer(ctx),
		ClientIP:      requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	}
}
