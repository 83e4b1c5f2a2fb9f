package api

import (
	"time"

	"github.com/stress-monitor/esms/internal/model"
	"github.com/stress-monitor/esms/internal/store"
)

// StorePort is the telemetry store contract the handlers consume.
type StorePort interface {
	Latest() (model.Reading, bool)
	Recent(k int) []model.Reading
	WithinLastMinutes(minutes int) []model.Reading
	Range(start, end time.Time) []model.Reading
	Statistics() store.Statistics
	ClientCount() int
	TotalReadings() uint64
	UptimeSeconds() uint64
	LastReadingTime() (time.Time, bool)

	// Streaming sessions additionally register through the store.
	RegisterClient(id string)
	UnregisterClient(id string)
}

// RecorderPort accepts validated readings from the ingest endpoint. Wiring it
// separately from StorePort lets the same tee used by the generator (store
// plus optional mirror) serve HTTP ingestion.
type RecorderPort interface {
	Record(model.Reading)
}
