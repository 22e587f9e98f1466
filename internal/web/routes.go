package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-appendix/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	appendixHandler := handlers.NewAppendixHandler(s.config, s.jobManager)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Appendix generation (long-running operations)
		r.Get("/appendix", appendixHandler.List)
		r.Post("/appendix", appendixHandler.Start)
		r.Get("/appendix/{jobId}", appendixHandler.Status)
		r.Get("/appendix/{jobId}/events", appendixHandler.Events)
		r.Delete("/appendix/{jobId}", appendixHandler.Cancel)
	})
}
