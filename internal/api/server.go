// Package api wires the HTTP server: the viewer pages, the JSON view
// endpoints, health and metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/protrade/internal/api/handler/api"
	"github.com/newthinker/protrade/internal/api/handler/web"
	"github.com/newthinker/protrade/internal/api/response"
	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/metrics"
	"github.com/newthinker/protrade/internal/viewer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the viewers
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	// WriteTimeout must outlast a full backend load. Zero picks 45s.
	WriteTimeout time.Duration
}

// Dependencies holds everything the routes need.
type Dependencies struct {
	Factory       *viewer.Factory
	DefaultSymbol string
	DefaultTF     core.Timeframe
	// Metrics is optional; nil disables instrumentation and /metrics.
	Metrics     *metrics.Registry
	MetricsPath string
	// Backend is reported by the health check.
	Backend string
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Factory == nil || deps.Factory.Candles == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("server needs a candle source"))
	}
	if deps.DefaultSymbol == "" {
		deps.DefaultSymbol = viewer.DefaultSymbol
	}
	if !deps.DefaultTF.IsValid() {
		deps.DefaultTF = viewer.DefaultTimeframe
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 45 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
	}

	if err := s.setupRoutes(cfg.TemplatesDir); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(templatesDir string) error {
	webHandler, err := web.NewHandler(templatesDir, s.deps.Factory,
		web.WithDefaults(s.deps.DefaultSymbol, s.deps.DefaultTF))
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	// Web UI routes
	s.mux.HandleFunc("GET /{$}", webHandler.Strategy)
	s.mux.HandleFunc("GET /chart", webHandler.Chart)

	// API routes
	views := apihandler.NewViewHandler(s.deps.Factory, s.deps.DefaultSymbol, s.deps.DefaultTF)
	s.mux.HandleFunc("GET /api/v1/view/candles", views.Candles)
	s.mux.HandleFunc("GET /api/v1/view/strategy", views.Strategy)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Metrics != nil {
		s.mux.Handle("GET "+s.deps.MetricsPath,
			promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{Registry: s.deps.Metrics}))
	}

	return nil
}

// Handler returns the routes wrapped in request logging and, when metrics
// are enabled, HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if s.deps.Metrics != nil {
		h = metrics.HTTPMiddleware(s.deps.Metrics)(h)
	}
	return metrics.LoggingMiddleware(s.logger)(h)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
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
		"status":  "ok",
		"backend": s.deps.Backend,
	})
}
