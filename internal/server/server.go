// =============================================================================
// Startup Funding Dashboard - HTTP Server
// =============================================================================
//
// The server exposes the loaded dataset to an interactive front end. The
// dataset is loaded once before the server starts and is never modified, so
// handlers share it without locking. Every dashboard request recomputes the
// filter and the views from scratch.
//
// ROUTES:
//   GET  /healthz         liveness and dataset size
//   GET  /api/options     filter widget options (distinct values, bounds)
//   GET  /api/raw         unfiltered records, ?limit=N
//   POST /api/dashboard   Selection JSON in, Dashboard JSON out
//   POST /api/export      Selection JSON in, XLSX workbook out
//   GET  /metrics         Prometheus metrics
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/logging"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// Server serves dashboards over HTTP.
type Server struct {
	cfg      config.ServerConfig
	ds       *types.Dataset
	opts     dashboard.Options
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// New creates a server for the loaded dataset.
func New(ds *types.Dataset, cfg config.ServerConfig, opts dashboard.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()

	s := &Server{
		cfg:      cfg,
		ds:       ds,
		opts:     opts,
		logger:   logger.With(slog.String("component", "server")),
		registry: registry,
		metrics:  NewMetrics(registry),
	}
	s.metrics.DatasetRecords.Set(float64(ds.Len()))
	if ds != nil {
		s.metrics.DatasetExcluded.Set(float64(len(ds.Excluded)))
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", s.handleOptions)
		r.Get("/raw", s.handleRaw)
		r.Post("/dashboard", s.handleDashboard)
		r.Post("/export", s.handleExport)
	})

	return r
}

// requestLogger logs each request and records request metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.WithRunID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.observeRequest(route, ww.Status(), time.Since(start))

		s.logger.DebugContext(ctx, "request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
//
// PARAMETERS:
//   - ctx: Cancelling it stops the server.
//
// RETURNS:
//   - nil after a clean shutdown, or the listen/shutdown error.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "records", s.ds.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
