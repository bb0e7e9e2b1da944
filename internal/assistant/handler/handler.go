// Package handler exposes the assistant Q&A endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hsaonboard/internal/assistant/models"
	"hsaonboard/internal/assistant/service"
	"hsaonboard/pkg/domain"
	"hsaonboard/pkg/platform/httputil"
	"hsaonboard/pkg/requestcontext"
)

// Service defines the assistant operations the handler needs.
type Service interface {
	Ask(ctx context.Context, question, followUp string, applicationID domain.ApplicationID) (*models.Answer, error)
	History(ctx context.Context, applicationID domain.ApplicationID, limit, offset int) ([]*models.Exchange, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

// Handler handles assistant endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the assistant routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/assistant", func(r chi.Router) {
		r.Post("/ask", h.handleAsk)
		r.Get("/history", h.handleHistory)
		r.Get("/stats", h.handleStats)
	})
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	answer, err := h.service.Ask(ctx, req.Question, req.Context, req.parsedAppID)
	if err != nil {
		h.logger.ErrorContext(ctx, "question answering failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, answer)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var appID domain.ApplicationID
	if raw := r.URL.Query().Get("application_id"); raw != "" {
		parsed, err := domain.ParseApplicationID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		appID = parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	exchanges, err := h.service.History(ctx, appID, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "assistant history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromExchanges(exchanges))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "knowledge base stats lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
