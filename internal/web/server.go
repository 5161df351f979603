// Package web fronts the composition engine with a JSON API: sessions,
// cell edits, previews and exports.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/export"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/web/handlers"
)

// Server owns the router, the session store and the export pipeline.
type Server struct {
	config     *config.Config
	gallery    *gallery.Gallery
	router     *chi.Mux
	httpServer *http.Server
	store      *handlers.Store
	pipeline   *export.Pipeline
	location   *time.Location
}

// NewServer wires the designer API. The gallery client is the only
// upstream; its host anchors the image allowlist.
func NewServer(cfg *config.Config, g *gallery.Gallery, host string, port int) (*Server, error) {
	loc, err := time.LoadLocation(cfg.Gallery.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Gallery.Timezone, err)
	}

	pipeline, err := export.NewPipeline(cfg.Export, g.Host())
	if err != nil {
		return nil, fmt.Errorf("could not create export pipeline: %w", err)
	}

	r := chi.NewRouter()
	s := &Server{
		config:   cfg,
		gallery:  g,
		router:   r,
		store:    handlers.NewStore(),
		pipeline: pipeline,
		location: loc,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // exports block on asset resolution
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
