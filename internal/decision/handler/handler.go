// Package handler exposes decision evaluation and the audit trail over HTTP.
// All routes require a reviewer token.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hsaonboard/internal/decision"
	"hsaonboard/internal/platform/middleware"
	"hsaonboard/pkg/domain"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/httputil"
	"hsaonboard/pkg/requestcontext"
)

// Service defines the decision operations the handler needs.
type Service interface {
	Evaluate(ctx context.Context, applicationID domain.ApplicationID) (*decision.Record, error)
	Latest(ctx context.Context, applicationID domain.ApplicationID) (*decision.Record, error)
}

// AuditReader lists the audit trail for an application.
type AuditReader interface {
	ListByApplication(ctx context.Context, applicationID domain.ApplicationID) ([]audit.Event, error)
}

// Handler handles decision endpoints.
type Handler struct {
	service   Service
	trail     AuditReader
	validator middleware.TokenValidator
	logger    *slog.Logger
}

func New(service Service, trail AuditReader, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		trail:     trail,
		validator: validator,
		logger:    logger,
	}
}

// Register mounts the decision routes behind reviewer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Route("/decisions", func(r chi.Router) {
		r.Use(middleware.RequireReviewer(h.validator, h.logger))
		r.Post("/evaluate", h.handleEvaluate)
		r.Get("/{application_id}", h.handleLatest)
		r.Get("/{application_id}/audit", h.handleAuditTrail)
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Evaluate(ctx, req.parsedID)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision evaluation failed",
			"request_id", requestID,
			"application_id", req.ApplicationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := domain.ParseApplicationID(chi.URLParam(r, "application_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Latest(ctx, appID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := domain.ParseApplicationID(chi.URLParam(r, "application_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.trail.ListByApplication(ctx, appID)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit trail lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", appID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditEvents(appID.String(), events))
}
