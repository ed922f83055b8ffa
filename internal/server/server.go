// Package server provides the HTTP surface of the air drawing host: health,
// live state, saved drawings, host commands and the preview stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/render"
	"github.com/ayusman/airdraw/internal/server/api"
	"github.com/ayusman/airdraw/internal/store"
)

// StatusProvider reports the latest engine status.
type StatusProvider interface {
	Status() engine.Status
}

// Config holds the server configuration. Nil collaborators disable their routes.
type Config struct {
	StaticDir string
	Store     *store.Store
	Preview   *render.Preview
	Status    StatusProvider
	Commands  api.CommandSubmitter
	// StatusInterval is the WebSocket broadcast period.
	StatusInterval time.Duration
	Logger         *slog.Logger
}

// Server is the HTTP server for the air drawing host.
type Server struct {
	config Config
	router *chi.Mux
	start  time.Time
	logger *slog.Logger
	status *StatusHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
		logger: logger.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)

	if s.config.Status != nil {
		r.Get("/api/state", s.handleState)
		s.status = NewStatusHandler(s.config.Status, s.config.StatusInterval, s.logger)
		r.Handle("/api/ws", s.status)
	}

	if s.config.Store != nil {
		api.NewDrawingHandler(s.config.Store, s.logger).Register(r)
	}

	if s.config.Commands != nil {
		api.NewCommandHandler(s.config.Commands).Register(r)
	}

	if s.config.Preview != nil {
		r.Get("/api/stream", NewStreamHandler(s.config.Preview).ServeHTTP)
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Status.Status()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on addr and blocks until it stops.
// A server stopped by Shutdown returns nil.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the status broadcaster and gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.status != nil {
		s.status.Close()
	}

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
