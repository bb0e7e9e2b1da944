// Package httptransport assembles the HTTP surface: middleware chain, module
// routes, health and metrics endpoints. It holds no business logic.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hsaonboard/internal/platform/middleware"
	"hsaonboard/pkg/platform/httputil"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a dependency. Nil checkers are skipped
// so optional dependencies (Redis) do not fail health when unconfigured.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options collects everything the router needs.
type Options struct {
	Modules []Registrar
	// TokenHandler serves POST /auth/token; nil disables reviewer login.
	TokenHandler http.HandlerFunc
	// RateLimit wraps module routes when set; health and metrics stay
	// unthrottled so probes keep working under load.
	RateLimit func(http.Handler) http.Handler
	Health    map[string]HealthChecker
	Logger    *slog.Logger
}

// NewRouter wires the full HTTP surface.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)

	r.Group(func(g chi.Router) {
		if opts.RateLimit != nil {
			g.Use(opts.RateLimit)
		}
		for _, m := range opts.Modules {
			m.Register(g)
		}
		if opts.TokenHandler != nil {
			g.Post("/auth/token", opts.TokenHandler)
		}
	})

	r.Get("/healthz", healthHandler(opts.Health, opts.Logger))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func healthHandler(checks map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		detail := make(map[string]string, len(checks)+1)
		detail["status"] = "ok"

		for name, check := range checks {
			if check == nil {
				detail[name] = "disabled"
				continue
			}
			if err := check.Health(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				detail[name] = "unhealthy"
				detail["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			detail[name] = "ok"
		}
		httputil.WriteJSON(w, status, detail)
	}
}
