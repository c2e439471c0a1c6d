// Package server sets up the HTTP server and registers API routes for go-pdftools.
//
// RegisterRoutes returns an http.Handler with all API endpoints for the PDF tools.
//
// Expected outputs:
// - Tools are available under /api/v1/{tool}, jobs under /api/v1/jobs
// - CORS, logging and panic recovery middleware are enabled
package server

import (
	"net"
	"net/http"

	_ "go-pdftools/docs"
	"go-pdftools/internal/apikey"
	"go-pdftools/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Only allow requests from localhost to /swagger/*
func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, _ := net.SplitHostPort(r.RemoteAddr)
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "x-api-key"},
	}))
	r.With(localhostOnly).Get("/swagger/*", httpSwagger.WrapHandler)

	var keys *apikey.Validator
	if !s.cfg.AuthDisabled {
		keys = apikey.NewValidator(s.Store, s.log)
	}
	h := handlers.NewAPIHandler(handlers.Deps{
		Registry:      s.Registry,
		Jobs:          s.Jobs,
		Keys:          keys,
		History:       s.history(),
		UploadDir:     s.cfg.UploadDir,
		MaxUploadSize: s.cfg.MaxUploadSize,
		MaxFiles:      s.cfg.MaxFiles,
		Logger:        s.log,
	})

	r.Get("/health", h.Health)
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/tools", h.ListTools)
		api.Group(func(api chi.Router) {
			api.Use(h.RequireAPIKey)
			api.Post("/jobs/{tool}", h.CreateJob)
			api.Get("/jobs/{jobID}", h.GetJob)
			api.Delete("/jobs/{jobID}", h.CancelJob)
			api.Get("/jobs/{jobID}/result", h.JobResult)
			api.Post("/{tool}", h.RunTool)
		})
	})

	return r
}

func (s *Server) history() handlers.HistoryRecorder {
	if s.Store == nil || !s.Store.Capabilities().History {
		return nil
	}
	return s.Store
}
