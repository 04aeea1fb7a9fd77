package server

import (
	"net/http"
)

// ProposalPTEPath is the Creatio-facing endpoint generating the technical execution procedures
const ProposalPTEPath = "/cx-ai/propunere-tehnica/proceduri-tehnice-de-executie"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Creatio integration
	mux.HandleFunc(ProposalPTEPath, s.app.ProposalHandler.GeneratePTEHandler)

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// 404 handler for unmatched routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
