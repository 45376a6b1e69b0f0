package apiv1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"workflow-analyst/internal/infra/api"
)

type RouterOptions struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
	// Metrics mounts /metrics when true.
	Metrics bool
}

// NewRouter builds the full HTTP handler: middleware, API routes, health and metrics.
func NewRouter(srv ServerInterface, opts RouterOptions, logger *zerolog.Logger) *chi.Mux {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	r := chi.NewRouter()
	r.Use(
		api.TraceID(),
		api.RequestLog(logger),
		api.Recover(logger),
		api.CORS(opts.AllowedOrigin),
		api.Timeout(opts.RequestTimeout),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})

	RegisterAPIV1(r, srv)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}
