// Package metrics defines the Prometheus instrumentation shared across the
// service. Collectors are registered once via promauto and exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReadingsGenerated counts readings produced by the signal generator.
	ReadingsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esms_readings_generated_total",
		Help: "Total number of readings produced by the signal generator",
	})

	// ReadingsIngested counts readings accepted through the HTTP ingest
	// endpoint.
	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esms_readings_ingested_total",
		Help: "Total number of readings accepted via HTTP ingestion",
	})

	// ClientsConnected tracks currently active streaming sessions.
	ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "esms_stream_clients_connected",
		Help: "Number of currently connected streaming clients",
	})

	// SessionTimeouts counts sessions closed by heartbeat timeout.
	SessionTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esms_stream_session_timeouts_total",
		Help: "Total number of streaming sessions closed by heartbeat timeout",
	})

	// StressIndicatorEvents counts periodic generator evaluations that found
	// at least one active stress indicator.
	StressIndicatorEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esms_stress_indicator_events_total",
		Help: "Total number of periodic checks with active stress indicators",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esms_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes HTTP request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "esms_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
