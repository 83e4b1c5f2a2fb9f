// Package model defines the core data types shared across the monitoring
// service: sensor readings, ingestion inputs, stress indicator flags, and the
// websocket message envelope.
package model
