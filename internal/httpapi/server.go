// Package httpapi implements the read-only HTTP surface: health and the
// four address-keyed query routes. Prometheus metrics are served on
// their own bound address by internal/metricsapi, matching the
// checkpoints-service's separate metrics port.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iotaledger/stardust-indexer-go/internal/apierr"
	"github.com/iotaledger/stardust-indexer-go/internal/model"
	"github.com/iotaledger/stardust-indexer-go/internal/query"
)

var tracer = otel.Tracer("stardust-indexer/httpapi")

// Server is the HTTP surface over one pair of query engines (basic, nft)
// and the objects store's health counters.
type Server struct {
	basic  *query.Engine
	nft    *query.Engine
	health healthCounter
	log    zerolog.Logger

	httpServer *http.Server
}

// healthCounter is the subset of store.ObjectsRepo the /health handler
// needs.
type healthCounter interface {
	Counts(ctx context.Context) (total, basic, nft int64, err error)
}

// Config configures the bound address.
type Config struct {
	BindAddress string // host:port, e.g. "0.0.0.0:3000"
}

// New builds a Server. basic and nft share the same underlying objects
// store but are constructed as distinct query.Engine values so each
// variant's handlers stay symmetric.
func New(cfg Config, basic, nft *query.Engine, health healthCounter, log zerolog.Logger) *Server {
	s := &Server{basic: basic, nft: nft, health: health, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/basic/{address}", s.handleRaw(model.Basic, s.basic))
	mux.HandleFunc("GET /v1/basic/resolved/{address}", s.handleResolved(model.Basic, s.basic))
	mux.HandleFunc("GET /v1/nft/{address}", s.handleRaw(model.Nft, s.nft))
	mux.HandleFunc("GET /v1/nft/resolved/{address}", s.handleResolved(model.Nft, s.nft))
	mux.HandleFunc("/", s.handleFallback)

	handler := s.withAccessLog(s.withCORS(s.withRecover(mux)))
	handler = otelhttp.NewHandler(handler, "stardust-indexer")

	s.httpServer = &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe runs the HTTP server until it errors or is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("address", s.httpServer.Addr).Msg("http surface listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withRecover isolates panics to the request that caused them, translating
// any panic into an Internal error response rather than crashing the
// server.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic in handler")
				writeError(w, apierr.New(apierr.Internal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows any origin for GET requests only, per spec.md §4.7.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		next.ServeHTTP(w, r)
	})
}

// withAccessLog logs one line per request with a correlation id, the way
// a production HTTP surface ties logs to traces.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleFallback(w http.ResponseWriter, _ *http.Request) {
	writeError(w, apierr.New(apierr.Forbidden, "forbidden"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, basic, nft, err := s.health.Counts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		ObjectsCount:      total,
		BasicObjectsCount: basic,
		NftObjectsCount:   nft,
	})
}

func (s *Server) handleRaw(variant model.ObjectType, engine *query.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "httpapi.handleRaw", traceAttrs(variant, r))
		defer span.End()

		addr, p, err := parseAddressAndPagination(r)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		rows, err := engine.Raw(ctx, variant, addr, p)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		resp, err := buildResponses(rows)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleResolved(variant model.ObjectType, engine *query.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "httpapi.handleResolved", traceAttrs(variant, r))
		defer span.End()

		addr, p, err := parseAddressAndPagination(r)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		rows, err := engine.Resolved(ctx, variant, addr, p)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		resp, err := buildResponses(rows)
		if err != nil {
			endWithError(span, err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func traceAttrs(variant model.ObjectType, r *http.Request) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("object_type", variant.String()),
		attribute.String("address", r.PathValue("address")),
	)
}

func endWithError(span trace.Span, err error) {
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

func parseAddressAndPagination(r *http.Request) (model.Address, query.Pagination, error) {
	addr, err := model.ParseAddress(r.PathValue("address"))
	if err != nil {
		return nil, query.Pagination{}, apierr.Wrap(apierr.BadRequest, "invalid address", err)
	}

	page, err := parseUintParam(r, "page")
	if err != nil {
		return nil, query.Pagination{}, err
	}
	pageSize, err := parseUintParam(r, "page_size")
	if err != nil {
		return nil, query.Pagination{}, err
	}

	p, err := query.ParsePagination(page, pageSize)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return addr, p, nil
}

func parseUintParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.New(apierr.BadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
