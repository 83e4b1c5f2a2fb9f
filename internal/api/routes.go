package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stress-monitor/esms/internal/stream"
)

// registerRoutes wires all endpoints onto the router.
func (s *Server) registerRoutes() {
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.metricsMiddleware)

	apiRouter := s.router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	apiRouter.HandleFunc("/sensor/ingest", s.handleIngest).Methods(http.MethodPost)
	apiRouter.HandleFunc("/sensor/latest", s.handleLatest).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sensor/history", s.handleHistory).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sensor/range", s.handleRange).Methods(http.MethodGet)
	apiRouter.HandleFunc("/sensor/statistics", s.handleStatistics).Methods(http.MethodGet)

	apiRouter.HandleFunc("/fhir/Observation/latest", s.handleFHIRLatest).Methods(http.MethodGet)
	apiRouter.HandleFunc("/fhir/Observation/bundle", s.handleFHIRBundle).Methods(http.MethodGet)
	apiRouter.HandleFunc("/fhir/Observation/{type}/latest", s.handleFHIRByType).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// handleWebSocket upgrades the request into a streaming session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	stream.ServeWS(w, r, s.store, stream.Options{
		HeartbeatInterval: s.cfg.Stream.HeartbeatInterval,
		ClientTimeout:     s.cfg.Stream.ClientTimeout,
		PollInterval:      s.cfg.Stream.PollInterval,
		Log:               s.log,
		Audit:             s.audit,
	})
}
