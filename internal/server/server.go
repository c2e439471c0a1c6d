// Package server provides the HTTP server setup for go-pdftools.
//
// New wires the configuration into a tool registry, a job manager, the key
// and history store and the compression engine, and returns a Server ready
// to listen.
//
// Expected outputs:
// - Server listens on the configured port (default 8080)
// - Finished jobs and their uploads are expired periodically
//
// Usage:
//
//	srv, err := server.New(ctx, cfg, log)
//	srv.HTTP.ListenAndServe()
//
// See internal/server/routes.go for route registration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go-pdftools/internal/apikey"
	"go-pdftools/internal/config"
	"go-pdftools/internal/engine"
	"go-pdftools/internal/handlers"
	"go-pdftools/internal/jobs"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/processors"
	"go-pdftools/internal/store"

	"github.com/rs/zerolog"
)

// Backend is the persistence the server needs.
type Backend interface {
	handlers.HistoryRecorder
	apikey.KeyStore
	Capabilities() store.Capabilities
}

type Server struct {
	HTTP     *http.Server
	Registry *processors.Registry
	Jobs     *jobs.Manager
	Store    Backend
	Engine   engine.Engine

	cfg     *config.Config
	log     zerolog.Logger
	closers []func(context.Context) error
	stop    chan struct{}
}

// New builds a server from cfg. A database that cannot be opened falls back
// to an in-memory store.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	s := &Server{cfg: cfg, log: log, stop: make(chan struct{})}

	var backend Backend
	db, err := store.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DatabasePath).Msg("database unavailable, using in-memory store")
		backend = store.NewMemory()
	} else {
		backend = db
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })
	}
	caps := backend.Capabilities()
	log.Info().Bool("apiKeys", caps.APIKeys).Bool("history", caps.History).Msg("store ready")

	var eng engine.Engine = engine.Native{}
	if cfg.EngineWasmPath != "" {
		w, err := engine.LoadWasm(ctx, cfg.EngineWasmPath, engine.WasmConfig{})
		if err != nil {
			s.close(ctx)
			return nil, fmt.Errorf("load engine: %w", err)
		}
		eng = w
		s.closers = append(s.closers, w.Close)
	}
	log.Info().Str("engine", eng.Name()).Msg("engine ready")

	s.Store = backend
	s.Engine = eng
	s.Registry = processors.NewRegistry(processors.Config{
		Limits: processor.Limits{MaxFiles: cfg.MaxFiles, MaxFileSize: cfg.MaxUploadSize},
		Engine: eng,
		Logger: log,
	})
	var history handlers.HistoryRecorder
	if caps.History {
		history = backend
	}
	s.Jobs = jobs.NewManager(log, handlers.RecordJobs(history, log))

	s.HTTP = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go s.expireJobs(cfg.JobTTL)
	return s, nil
}

// expireJobs drops finished jobs older than ttl, with their files.
func (s *Server) expireJobs(ttl time.Duration) {
	interval := ttl / 2
	if interval <= 0 || interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.Jobs.Expire(ttl); n > 0 {
				s.log.Debug().Int("jobs", n).Msg("expired jobs")
			}
		case <-s.stop:
			return
		}
	}
}

// Shutdown stops the HTTP server, cancels running jobs and releases the
// store and engine.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	close(s.stop)
	s.Jobs.Shutdown(ctx)
	s.close(ctx)
	return err
}

func (s *Server) close(ctx context.Context) {
	for _, c := range s.closers {
		if err := c(ctx); err != nil {
			s.log.Warn().Err(err).Msg("close failed")
		}
	}
	s.closers = nil
}
