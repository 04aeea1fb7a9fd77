package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/app"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	// Setup routes
	s.router = s.setupRoutes()

	// Generation runs for minutes, so the write timeout is configurable
	cfg := application.Config.Server
	s.server = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  common.MustDuration(cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: common.MustDuration(cfg.WriteTimeout, 15*time.Minute),
		IdleTimeout:  common.MustDuration(cfg.IdleTimeout, 60*time.Second),
	}

	return s
}

// Addr returns the host:port the server listens on
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.Addr()).
		Str("endpoint", ProposalPTEPath).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
