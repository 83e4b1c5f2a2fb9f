package model

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one immutable captured sample of all four sensor channels.
// Identity is the ID; a Reading is never mutated after construction.
type Reading struct {
	ID uuid.UUID `json:"id"`

	// Temperature in Celsius (DHT11 practical range 0-50).
	Temperature float64 `json:"temperature"`

	// Humidity percentage (DHT11 practical range 20-90).
	Humidity float64 `json:"humidity"`

	// Sound level in analog units (0-1023).
	Sound float64 `json:"sound"`

	// Heart rate in BPM (MAX30100 pulse oximeter).
	HeartRate float64 `json:"heart_rate"`

	Timestamp time.Time `json:"timestamp"`

	// CorrelationID is an optional token for request tracing.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewReading creates a reading with a fresh ID, correlation token, and the
// current timestamp.
func NewReading(temperature, humidity, sound, heartRate float64) Reading {
	return Reading{
		ID:            uuid.New(),
		Temperature:   temperature,
		Humidity:      humidity,
		Sound:         sound,
		HeartRate:     heartRate,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.NewString(),
	}
}

// StressIndicators flags conditions that correlate with stress or discomfort.
// These identify correlations only; they are not diagnostic.
type StressIndicators struct {
	HighTemperature   bool `json:"high_temperature"`
	LowTemperature    bool `json:"low_temperature"`
	HighHumidity      bool `json:"high_humidity"`
	LowHumidity       bool `json:"low_humidity"`
	HighNoise         bool `json:"high_noise"`
	ElevatedHeartRate bool `json:"elevated_heart_rate"`
	LowHeartRate      bool `json:"low_heart_rate"`
}

// StressIndicators evaluates the comfort thresholds for this reading.
func (r Reading) StressIndicators() StressIndicators {
	return StressIndicators{
		HighTemperature:   r.Temperature > 28.0,
		LowTemperature:    r.Temperature < 18.0,
		HighHumidity:      r.Humidity > 70.0,
		LowHumidity:       r.Humidity < 30.0,
		HighNoise:         r.Sound > 500.0,
		ElevatedHeartRate: r.HeartRate > 100.0,
		LowHeartRate:      r.HeartRate < 50.0,
	}
}

// ActiveCount returns the number of raised indicator flags.
func (si StressIndicators) ActiveCount() int {
	count := 0
	for _, active := range []bool{
		si.HighTemperature,
		si.LowTemperature,
		si.HighHumidity,
		si.LowHumidity,
		si.HighNoise,
		si.ElevatedHeartRate,
		si.LowHeartRate,
	} {
		if active {
			count++
		}
	}
	return count
}

// SensorInput is the ingestion DTO for externally submitted readings.
// Field ranges are enforced by the validation package before conversion.
type SensorInput struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Sound       float64 `json:"sound"`
	HeartRate   float64 `json:"heart_rate"`

	// Timestamp is optional; server time is used when absent.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Reading converts the input into a Reading with a fresh identity. The
// correlation ID is taken from the request when provided.
func (in SensorInput) Reading(correlationID string) Reading {
	ts := time.Now().UTC()
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return Reading{
		ID:            uuid.New(),
		Temperature:   in.Temperature,
		Humidity:      in.Humidity,
		Sound:         in.Sound,
		HeartRate:     in.HeartRate,
		Timestamp:     ts,
		CorrelationID: correlationID,
	}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	Timestamp     time.Time  `json:"timestamp"`
	UptimeSeconds uint64     `json:"uptime_seconds"`
	LastReading   *time.Time `json:"last_reading,omitempty"`
	TotalReadings uint64     `json:"total_readings"`
	Clients       int        `json:"connected_clients"`
}
