// Package metricsapi serves the Prometheus exposition format on its own
// bound address, separate from the query HTTP surface — matching the
// checkpoints-service's separate metrics port (spec.md §6's
// --metrics-address, original_source/src/metrics.rs's
// start_prometheus_server).
package metricsapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iotaledger/stardust-indexer-go/internal/metrics"
)

// Config configures the bound address.
type Config struct {
	BindAddress string
}

// Server exposes GET /metrics for one metrics.Registry.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// New builds a metrics Server.
func New(cfg Config, reg *metrics.Registry, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))

	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              cfg.BindAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe runs the metrics server until it errors or is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("address", s.httpServer.Addr).Msg("metrics surface listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
