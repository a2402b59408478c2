// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/lrchart/chartai/internal/api/handler/api"
	"github.com/lrchart/chartai/internal/api/handler/web"
	"github.com/lrchart/chartai/internal/api/middleware"
	"github.com/lrchart/chartai/internal/api/response"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/metrics"
)

// Server represents the HTTP server for LR - CHART AI
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MaxUploadMB int
	// MetricsPath is where Prometheus scrapes. Empty disables the endpoint.
	MetricsPath string
	// WriteTimeout must cover the UI timeout of the AI pages.
	WriteTimeout time.Duration
}

// Dependencies holds the services the routes are wired to.
type Dependencies struct {
	App     *app.App
	Metrics *metrics.Registry
	Web     web.Options
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.App == nil {
		return nil, fmt.Errorf("server needs an app")
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}

	// Set up routes
	if err := s.setupRoutes(cfg); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) error {
	maxUpload := int64(cfg.MaxUploadMB) << 20

	// Web UI routes
	webOpts := s.deps.Web
	webOpts.MaxUploadBytes = maxUpload
	if webOpts.Logger == nil {
		webOpts.Logger = s.logger
	}
	webHandler, err := web.NewHandler(s.deps.App, webOpts)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	webHandler.Register(s.mux)

	// JSON API, behind the operator key
	pairs := apihandler.NewPairsHandler(s.deps.App)
	signals := apihandler.NewSignalsHandler(s.deps.App)
	batches := apihandler.NewBatchesHandler(s.deps.App)
	analysis := apihandler.NewAnalysisHandler(s.deps.App, maxUpload)
	jobs := apihandler.NewJobsHandler(s.deps.App)

	v1 := http.NewServeMux()
	v1.HandleFunc("GET /api/v1/pairs", pairs.List)
	v1.HandleFunc("POST /api/v1/signals/next", signals.Next)
	v1.HandleFunc("POST /api/v1/signals/future", signals.Future)
	v1.HandleFunc("GET /api/v1/batches", batches.List)
	v1.HandleFunc("GET /api/v1/batches/{id}", batches.Get)
	v1.HandleFunc("GET /api/v1/batches/{id}/report", batches.Report)
	v1.HandleFunc("POST /api/v1/batches/{id}/publish", batches.Publish)
	v1.HandleFunc("POST /api/v1/analysis/chart", analysis.Chart)
	v1.HandleFunc("POST /api/v1/analysis/future", analysis.Future)
	v1.HandleFunc("GET /api/v1/jobs/{id}", jobs.Get)
	s.mux.Handle("/api/v1/", middleware.APIKeyAuth(cfg.APIKey)(v1))

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if cfg.MetricsPath != "" && s.deps.Metrics != nil {
		s.mux.Handle("GET "+cfg.MetricsPath,
			promhttp.HandlerFor(s.deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	return nil
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
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
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stats":  s.deps.App.GetStats(r.Context()),
	})
}
