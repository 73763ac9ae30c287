package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static/*
var staticFiles embed.FS

// routes builds the router with all API, metrics and static routes.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogMiddleware(s.logger))
	r.Use(newRateLimitMiddleware(s.limiter))
	r.Use(noCacheMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleAPI)
		r.Get("/summary", s.handleSummaryAPI)
		r.Get("/games", s.handleGamesAPI)
		r.Get("/actions", s.handleActionsAPI)
		r.Get("/machines/{pc}", s.handleMachineAPI)
		r.Post("/machines/{pc}/invite", s.handleInvite)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/launch", s.handleLaunch)
	})

	r.Method(http.MethodGet, "/metrics", s.metricsHandler())

	content, err := fs.Sub(staticFiles, "static")
	if err != nil {
		s.logger.Fatalf("Failed to create sub filesystem: %v", err)
	}
	r.Handle("/*", http.FileServer(http.FS(content)))

	return r
}
