package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for this service: document
// uploads run to 20MB and assistant answers wait on a hosted model with a
// 60s budget, so the write timeout must outlast the model call.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
