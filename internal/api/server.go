package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/stress-monitor/esms/internal/audit"
	"github.com/stress-monitor/esms/internal/config"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	store      StorePort
	recorder   RecorderPort
	cfg        *config.Config
	log        *slog.Logger
	audit      *audit.Logger
}

// NewServer wires the API surface over the store and recorder.
func NewServer(st StorePort, rec RecorderPort, cfg *config.Config, log *slog.Logger, auditLog *audit.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		router:   mux.NewRouter(),
		store:    st,
		recorder: rec,
		cfg:      cfg,
		log:      log,
		audit:    auditLog,
	}
	s.registerRoutes()
	return s
}

// Handler returns the configured router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until it fails or Stop is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	s.log.Info("starting HTTP server", slog.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
