// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"fitforge/internal/cache"
	"fitforge/internal/db"
	"fitforge/pkg/logger"
)

type Server struct {
	server *http.Server
	logger *logger.Logger
}

// NewServer wires the HTTP API over the orchestrator, cache and store.
func NewServer(port string, orch Orchestrator, c *cache.Cache, store db.Store, log *logger.Logger) *Server {
	h := &handlers{orch: orch, cache: c, store: store, logger: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/generate-plans", h.generatePlans)
	mux.HandleFunc("/plan-status/", h.planStatus)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/cache/stats", h.cacheStats)
	mux.HandleFunc("/cache/invalidate", h.cacheInvalidate)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
