// Package api implements the HTTP surface of the monitoring service.
//
// It exposes the REST endpoints for sensor data, statistics and FHIR
// resources, the websocket upgrade for streaming sessions, and the Prometheus
// metrics endpoint, all over the telemetry store's read/write contract.
package api
