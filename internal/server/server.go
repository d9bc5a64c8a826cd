// Package server provides the HTTP control surface for the particle display.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/server/api"
	"github.com/ayusman/gesturemagic/internal/store"
)

// Scene is everything the server reads from and drives on the app.
type Scene interface {
	api.Scene
	api.Recorder
	Snapshot() app.Snapshot
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Scene     Scene
	Store     *store.Store
	// Preview enables /api/stream when set.
	Preview PreviewSource
	// ParticleInterval is the WebSocket snapshot period; zero means ~15 Hz.
	ParticleInterval time.Duration
}

// Server represents the HTTP server for the particle display.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	particles *ParticlesHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Scene != nil {
		api.NewSceneHandler(s.config.Scene).Register(s.mux)

		s.particles = NewParticlesHandler(s.config.Scene, s.config.ParticleInterval)
		s.mux.Handle("/api/particles", s.particles)
	}

	// Sessions are read-only without a scene to record from.
	if s.config.Store != nil {
		var recorder api.Recorder
		if s.config.Scene != nil {
			recorder = s.config.Scene
		}
		sessions := api.NewSessionHandler(s.config.Store, recorder)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Frames int    `json:"frames,omitempty"`
	Source string `json:"source,omitempty"`
}

// sourceReporter is implemented by scenes that run a gesture source.
type sourceReporter interface {
	Running() bool
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Millisecond).String(),
	}
	if s.config.Scene != nil {
		resp.Frames = s.config.Scene.State().Frames
		if src, ok := s.config.Scene.(sourceReporter); ok {
			resp.Source = "stopped"
			if src.Running() {
				resp.Source = "running"
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops background broadcasting and disconnects stream clients.
func (s *Server) Close() {
	if s.particles != nil {
		s.particles.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("HTTP server listening on %s", addr)

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
