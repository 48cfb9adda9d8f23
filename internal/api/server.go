// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handlers "github.com/newthinker/tradelens/internal/api/handler/api"
	"github.com/newthinker/tradelens/internal/api/job"
	"github.com/newthinker/tradelens/internal/api/middleware"
	"github.com/newthinker/tradelens/internal/logger"
	"github.com/newthinker/tradelens/internal/metrics"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/storage/archive"
)

// Server represents the TradeLens HTTP API server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host          string
	Port          int
	APIKey        string
	MetricsPath   string // Empty disables the metrics endpoint
	DefaultPeriod period.Kind
}

// Dependencies are the collaborators the routes serve from.
type Dependencies struct {
	Service   *service.Service
	Snapshots archive.Storage         // Optional
	Runner    handlers.SnapshotRunner // Optional, enables on-demand snapshot runs
	Metrics   *metrics.Registry       // Optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, log *zap.Logger) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("api server requires a stats service")
	}
	log = logger.OrNop(log)

	mux := http.NewServeMux()
	s := &Server{
		logger: log,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	s.handler = metrics.LoggingMiddleware(log)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	stats := handlers.NewStatsHandler(deps.Service, cfg.DefaultPeriod)
	trades := handlers.NewTradesHandler(deps.Service)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.Handle("GET /api/users", protect(trades.Users))
	s.mux.Handle("GET /api/users/{user}/stats", protect(stats.Stats))
	s.mux.Handle("GET /api/users/{user}/daily", protect(stats.Daily))
	s.mux.Handle("GET /api/users/{user}/calendar", protect(stats.Calendar))
	s.mux.Handle("GET /api/users/{user}/symbols", protect(stats.Symbols))
	s.mux.Handle("GET /api/users/{user}/weekdays", protect(stats.Weekdays))
	s.mux.Handle("POST /api/users/{user}/trades", protect(trades.Import))
	s.mux.Handle("DELETE /api/users/{user}/trades/{id}", protect(trades.Delete))

	if deps.Snapshots != nil {
		snaps := handlers.NewSnapshotsHandler(deps.Snapshots)
		s.mux.Handle("GET /api/users/{user}/snapshots", protect(snaps.List))
		s.mux.Handle("GET /api/users/{user}/snapshots/{day}/{name}", protect(snaps.Get))
	}

	if deps.Runner != nil {
		runs := handlers.NewRunsHandler(job.NewStore(100, time.Hour), deps.Runner, s.logger)
		s.mux.Handle("POST /api/snapshots/runs", protect(runs.Create))
		s.mux.Handle("GET /api/snapshots/runs", protect(runs.List))
		s.mux.Handle("GET /api/snapshots/runs/{id}", protect(runs.Get))
	}

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
