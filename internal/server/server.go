// Package server provides the HTTP surface of handfusion: health and status,
// live views of the pipeline, hand state over WebSocket, metrics and the
// profile API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handfusion/internal/logger"
	"github.com/ayusman/handfusion/internal/metrics"
	"github.com/ayusman/handfusion/internal/server/api"
	"github.com/ayusman/handfusion/internal/store"
)

// Toggle switches processing on and off.
type Toggle interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Config holds the server configuration. Every field is optional; routes
// backed by a missing dependency are not registered.
type Config struct {
	StaticDir      string
	Store          *store.Store
	Hub            *Hub
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	Status         func() any
	Control        Toggle
	StreamInterval time.Duration
}

// Server represents the HTTP server for handfusion.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	config.Logger = logger.Component(config.Logger, "server")

	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(logger.RequestLogger(s.config.Logger))
	if s.config.Metrics != nil {
		r.Use(metrics.RequestMiddleware(s.config.Metrics))
		r.Handle("/metrics", s.config.Metrics.Handler())
	}

	r.Get("/api/health", s.handleHealth)

	if s.config.Status != nil {
		r.Get("/api/status", s.handleStatus)
	}

	if s.config.Control != nil {
		r.Get("/api/control", s.handleGetControl)
		r.Put("/api/control", s.handlePutControl)
	}

	if s.config.Store != nil {
		profiles := api.NewProfileHandler(s.config.Store)
		r.Handle("/api/profiles", profiles)
		r.Handle("/api/profiles/*", profiles)
		r.Get("/api/sessions", api.NewSessionsHandler(s.config.Store).ServeHTTP)
	}

	if s.config.Hub != nil {
		r.Get("/api/stream/{view}", NewStreamHandler(s.config.Hub, s.config.StreamInterval).ServeHTTP)
		r.Get("/api/hands", NewHandsHandler(s.config.Hub, s.config.Logger).ServeHTTP)
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Status())
}

type controlBody struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleGetControl(w http.ResponseWriter, r *http.Request) {
	enabled := s.config.Control.IsEnabled()
	writeJSON(w, http.StatusOK, controlBody{Enabled: &enabled})
}

func (s *Server) handlePutControl(w http.ResponseWriter, r *http.Request) {
	var body controlBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "enabled is required"})
		return
	}

	s.config.Control.SetEnabled(*body.Enabled)
	s.config.Logger.Info("processing toggled", "enabled", *body.Enabled)

	enabled := s.config.Control.IsEnabled()
	writeJSON(w, http.StatusOK, controlBody{Enabled: &enabled})
}

// ListenAndServe starts the HTTP server on the given address. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a server started with ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
