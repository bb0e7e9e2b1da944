// Package service orchestrates document uploads and field extraction.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"hsaonboard/internal/document/models"
	"hsaonboard/internal/document/ocr"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/requestcontext"
)

// MaxUploadBytes caps uploads at 20MB.
const MaxUploadBytes = 20 << 20

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Store persists document records.
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id domain.DocumentID) (*models.Document, error)
	ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*models.Document, error)
	LatestByType(ctx context.Context, id domain.ApplicationID, docType models.Type) (*models.Document, error)
	MarkSuperseded(ctx context.Context, id domain.ApplicationID, docType models.Type) error
}

// ApplicationChecker verifies the target application exists before accepting
// an upload.
type ApplicationChecker interface {
	Exists(ctx context.Context, id domain.ApplicationID) error
}

// AuditPublisher emits document lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service handles uploads: validate, supersede prior versions, extract
// fields, track processing status.
type Service struct {
	store     Store
	extractor ocr.Extractor
	apps      ApplicationChecker
	audit     AuditPublisher
	logger    *slog.Logger
}

func New(store Store, extractor ocr.Extractor, apps ApplicationChecker, auditPub AuditPublisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		apps:      apps,
		audit:     auditPub,
		logger:    logger,
	}
}

// Upload accepts a document, supersedes any prior upload of the same type,
// and runs extraction. The returned document carries the terminal processing
// status; a failed extraction is a completed upload with StatusFailed, not
// an error.
func (s *Service) Upload(ctx context.Context, appID domain.ApplicationID, docType models.Type, fileName, contentType string, size int64, file io.Reader) (*models.Document, error) {
	if !docType.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "document_type must be government_id or employer_proof")
	}
	if size > MaxUploadBytes {
		return nil, dErrors.New(dErrors.CodeValidation, "file exceeds the 20MB upload limit")
	}
	if !allowedContentTypes[contentType] {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported content type: "+contentType)
	}
	if err := s.apps.Exists(ctx, appID); err != nil {
		return nil, err
	}

	image, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeBadRequest, "failed to read uploaded file", err)
	}
	if len(image) > MaxUploadBytes {
		return nil, dErrors.New(dErrors.CodeValidation, "file exceeds the 20MB upload limit")
	}
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "uploaded file is empty")
	}

	// A re-upload replaces the prior document of the same type.
	if err := s.store.MarkSuperseded(ctx, appID, docType); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to supersede prior documents", err)
	}

	now := requestcontext.Now(ctx)
	doc := &models.Document{
		ID:            domain.NewDocumentID(),
		ApplicationID: appID,
		Type:          docType,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     int64(len(image)),
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create document record", err)
	}

	s.emit(ctx, doc, audit.EventDocumentUploaded, "")

	s.extract(ctx, doc, image)
	return doc, nil
}

// extract runs the vision model and records the terminal status. Extraction
// failures never propagate as errors; the document ends in StatusFailed and
// the decision engine treats it as unreadable.
func (s *Service) extract(ctx context.Context, doc *models.Document, image []byte) {
	doc.Status = models.StatusProcessing
	doc.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "document status update failed",
			"document_id", doc.ID,
			"error", err,
		)
	}

	var extractErr error
	switch doc.Type {
	case models.TypeGovernmentID:
		data, err := s.extractor.ExtractGovernmentID(ctx, image, doc.ContentType)
		if err != nil {
			extractErr = err
		} else {
			doc.GovernmentID = data
		}
	case models.TypeEmployerProof:
		data, err := s.extractor.ExtractEmployerProof(ctx, image, doc.ContentType)
		if err != nil {
			extractErr = err
		} else {
			doc.EmployerProof = data
		}
	}

	if extractErr != nil {
		doc.Status = models.StatusFailed
		doc.ErrorMessage = extractErr.Error()
		s.logger.WarnContext(ctx, "document extraction failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", doc.ID,
			"error", extractErr,
		)
		s.emit(ctx, doc, audit.EventDocumentExtractionFailed, extractErr.Error())
	} else {
		doc.Status = models.StatusCompleted
		s.emit(ctx, doc, audit.EventDocumentExtracted, "")
	}

	doc.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "document status update failed",
			"document_id", doc.ID,
			"error", err,
		)
	}
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	return s.store.GetByID(ctx, id)
}

// ListByApplication returns every document uploaded for an application,
// including superseded versions.
func (s *Service) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*models.Document, error) {
	return s.store.ListByApplication(ctx, id)
}

// LatestByType returns the current (non-superseded) document of a type.
func (s *Service) LatestByType(ctx context.Context, id domain.ApplicationID, docType models.Type) (*models.Document, error) {
	if !docType.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown document type: "+string(docType))
	}
	return s.store.LatestByType(ctx, id, docType)
}

func (s *Service) emit(ctx context.Context, doc *models.Document, action audit.AuditEvent, reason string) {
	err := s.audit.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		ApplicationID: doc.ApplicationID,
		Subject:       fmt.Sprintf("document/%s", doc.Type),
		Action:        string(action),
		Reason:        reason,
		RequestID:     requestcontext.RequestID(ctx),
		ClientIP:      requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed for document event",
			"document_id", doc.ID,
			"action", action,
			"error", err,
		)
	}
}
