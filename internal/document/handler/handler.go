// Package handler exposes document upload and status endpoints.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hsaonboard/internal/document/models"
	docservice "hsaonboard/internal/document/service"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	"hsaonboard/pkg/platform/httputil"
	"hsaonboard/pkg/requestcontext"
)

// multipart form memory budget; larger parts spill to temp files.
const maxMultipartMemory = 8 << 20

// Service defines the document operations the handler needs.
type Service interface {
	Upload(ctx context.Context, appID domain.ApplicationID, docType models.Type, fileName, contentType string, size int64, file io.Reader) (*models.Document, error)
	Get(ctx context.Context, id domain.DocumentID) (*models.Document, error)
	ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*models.Document, error)
}

// Handler handles document endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the document routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents/upload", h.handleUpload)
	r.Get("/documents/{id}", h.handleGet)
	r.Get("/applications/{id}/documents", h.handleListByApplication)
}

// handleUpload accepts a multipart form with fields "application_id",
// "document_type", and the file under "file".
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, docservice.MaxUploadBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.WarnContext(ctx, "multipart parse failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request must be multipart/form-data within the upload limit"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	appID, err := domain.ParseApplicationID(r.FormValue("application_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docType := models.Type(r.FormValue("document_type"))

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	doc, err := h.service.Upload(ctx, appID, docType, header.Filename, contentType, header.Size, file)
	if err != nil {
		h.logger.WarnContext(ctx, "document upload failed",
			"request_id", requestID,
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromDocument(doc))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := domain.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Get(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}

func (h *Handler) handleListByApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := domain.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	docs, err := h.service.ListByApplication(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocuments(docs))
}
