// Package api exposes the prediction service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultRequestTimeout = 60 * time.Second

// RouterOptions carries the cross-cutting settings of the router.
type RouterOptions struct {
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

// NewRouter mounts the handler and the global middleware chain. Order:
// recover, request ID, logging, CORS, timeout.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(CORS(opts.CORSAllowedOrigins))
	r.Use(ContextTimeout(timeout))

	r.Route("/api", func(r chi.Router) {
		r.Post("/predict", h.Predict)
		r.Post("/warmup", h.Warmup)
		r.Get("/health", h.Health)
	})
	r.Get("/healthz/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
