package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the root configuration for the monitoring service.
type Config struct {
	Server ServerConfig
	Sensor SensorConfig
	Store  StoreConfig
	Stream StreamConfig
	FHIR   FHIRConfig
	Redis  RedisConfig
	Log    LogConfig
	Audit  AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SensorConfig holds signal generator settings.
type SensorConfig struct {
	// Interval between generated readings.
	Interval time.Duration
	// Seed for the generator's random source; 0 selects an entropy seed.
	Seed int64
}

// StoreConfig holds telemetry history settings.
type StoreConfig struct {
	// HistorySize bounds the retained reading count.
	HistorySize int
}

// StreamConfig holds per-client streaming session settings.
type StreamConfig struct {
	// HeartbeatInterval is the cadence of outbound liveness probes.
	HeartbeatInterval time.Duration
	// ClientTimeout closes a session with no inbound traffic for this long.
	ClientTimeout time.Duration
	// PollInterval is the cadence of the poll-and-diff update check.
	PollInterval time.Duration
}

// FHIRConfig holds FHIR resource generation settings.
type FHIRConfig struct {
	BaseURL          string
	PatientReference string
}

// RedisConfig holds the optional reading mirror settings. An empty Addr
// disables the mirror.
type RedisConfig struct {
	Addr string
}

// LogConfig holds logging settings. Format is "json" or "text".
type LogConfig struct {
	Level  string
	Format string
}

// AuditConfig holds the audit trail settings. An empty Dir disables auditing.
type AuditConfig struct {
	Dir string
}

// Defaults returns the baseline configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Sensor: SensorConfig{
			Interval: time.Second,
		},
		Store: StoreConfig{
			HistorySize: 3600, // 1 hour at 1 reading/second
		},
		Stream: StreamConfig{
			HeartbeatInterval: 5 * time.Second,
			ClientTimeout:     30 * time.Second,
			PollInterval:      time.Second,
		},
		FHIR: FHIRConfig{
			BaseURL:          "http://localhost:8080/api/fhir",
			PatientReference: "Patient/esms-monitor-subject",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Dir: "logs",
		},
	}
}

// Load merges Defaults() + ESMS_* env overrides + optional config.json, then
// validates the result.
func Load() (*Config, error) {
	cfg := Defaults()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if _, err := os.Stat("config.json"); err == nil {
		if err := applyFile(cfg, "config.json"); err != nil {
			return nil, fmt.Errorf("failed to load config.json: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ESMS_* environment variables to the config.
// Malformed values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("ESMS_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ESMS_SERVER_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("ESMS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	durations := map[string]*time.Duration{
		"ESMS_SERVER_READ_TIMEOUT":   &cfg.Server.ReadTimeout,
		"ESMS_SERVER_WRITE_TIMEOUT":  &cfg.Server.WriteTimeout,
		"ESMS_SERVER_IDLE_TIMEOUT":   &cfg.Server.IdleTimeout,
		"ESMS_SENSOR_INTERVAL":       &cfg.Sensor.Interval,
		"ESMS_STREAM_HEARTBEAT":      &cfg.Stream.HeartbeatInterval,
		"ESMS_STREAM_CLIENT_TIMEOUT": &cfg.Stream.ClientTimeout,
		"ESMS_STREAM_POLL_INTERVAL":  &cfg.Stream.PollInterval,
	}
	for key, target := range durations {
		if val := os.Getenv(key); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = d
		}
	}

	if val := os.Getenv("ESMS_SENSOR_SEED"); val != "" {
		seed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("ESMS_SENSOR_SEED: %w", err)
		}
		cfg.Sensor.Seed = seed
	}
	if val := os.Getenv("ESMS_STORE_HISTORY_SIZE"); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("ESMS_STORE_HISTORY_SIZE: %w", err)
		}
		cfg.Store.HistorySize = size
	}
	if val := os.Getenv("ESMS_FHIR_BASE_URL"); val != "" {
		cfg.FHIR.BaseURL = val
	}
	if val := os.Getenv("ESMS_FHIR_PATIENT_REFERENCE"); val != "" {
		cfg.FHIR.PatientReference = val
	}
	if val := os.Getenv("ESMS_REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("ESMS_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("ESMS_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv("ESMS_AUDIT_DIR"); val != "" {
		cfg.Audit.Dir = val
	}

	return nil
}

// fileConfig is the on-disk shape of config.json. Pointer fields distinguish
// absent keys from zero values; durations are expressed in milliseconds.
type fileConfig struct {
	Server *struct {
		Host           *string `json:"host"`
		Port           *int    `json:"port"`
		ReadTimeoutMs  *int64  `json:"read_timeout_ms"`
		WriteTimeoutMs *int64  `json:"write_timeout_ms"`
		IdleTimeoutMs  *int64  `json:"idle_timeout_ms"`
	} `json:"server"`
	Sensor *struct {
		IntervalMs *int64 `json:"interval_ms"`
		Seed       *int64 `json:"seed"`
	} `json:"sensor"`
	Store *struct {
		HistorySize *int `json:"history_size"`
	} `json:"store"`
	Stream *struct {
		HeartbeatMs     *int64 `json:"heartbeat_ms"`
		ClientTimeoutMs *int64 `json:"client_timeout_ms"`
		PollIntervalMs  *int64 `json:"poll_interval_ms"`
	} `json:"stream"`
	FHIR *struct {
		BaseURL          *string `json:"base_url"`
		PatientReference *string `json:"patient_reference"`
	} `json:"fhir"`
	Redis *struct {
		Addr *string `json:"addr"`
	} `json:"redis"`
	Log *struct {
		Level  *string `json:"level"`
		Format *string `json:"format"`
	} `json:"log"`
	Audit *struct {
		Dir *string `json:"dir"`
	} `json:"audit"`
}

// applyFile merges settings present in the file over the current config.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

	if fc.Server != nil {
		if fc.Server.Host != nil {
			cfg.Server.Host = *fc.Server.Host
		}
		if fc.Server.Port != nil {
			cfg.Server.Port = *fc.Server.Port
		}
		if fc.Server.ReadTimeoutMs != nil {
			cfg.Server.ReadTimeout = ms(*fc.Server.ReadTimeoutMs)
		}
		if fc.Server.WriteTimeoutMs != nil {
			cfg.Server.WriteTimeout = ms(*fc.Server.WriteTimeoutMs)
		}
		if fc.Server.IdleTimeoutMs != nil {
			cfg.Server.IdleTimeout = ms(*fc.Server.IdleTimeoutMs)
		}
	}
	if fc.Sensor != nil {
		if fc.Sensor.IntervalMs != nil {
			cfg.Sensor.Interval = ms(*fc.Sensor.IntervalMs)
		}
		if fc.Sensor.Seed != nil {
			cfg.Sensor.Seed = *fc.Sensor.Seed
		}
	}
	if fc.Store != nil && fc.Store.HistorySize != nil {
		cfg.Store.HistorySize = *fc.Store.HistorySize
	}
	if fc.Stream != nil {
		if fc.Stream.HeartbeatMs != nil {
			cfg.Stream.HeartbeatInterval = ms(*fc.Stream.HeartbeatMs)
		}
		if fc.Stream.ClientTimeoutMs != nil {
			cfg.Stream.ClientTimeout = ms(*fc.Stream.ClientTimeoutMs)
		}
		if fc.Stream.PollIntervalMs != nil {
			cfg.Stream.PollInterval = ms(*fc.Stream.PollIntervalMs)
		}
	}
	if fc.FHIR != nil {
		if fc.FHIR.BaseURL != nil {
			cfg.FHIR.BaseURL = *fc.FHIR.BaseURL
		}
		if fc.FHIR.PatientReference != nil {
			cfg.FHIR.PatientReference = *fc.FHIR.PatientReference
		}
	}
	if fc.Redis != nil && fc.Redis.Addr != nil {
		cfg.Redis.Addr = *fc.Redis.Addr
	}
	if fc.Log != nil {
		if fc.Log.Level != nil {
			cfg.Log.Level = *fc.Log.Level
		}
		if fc.Log.Format != nil {
			cfg.Log.Format = *fc.Log.Format
		}
	}
	if fc.Audit != nil && fc.Audit.Dir != nil {
		cfg.Audit.Dir = *fc.Audit.Dir
	}

	return nil
}
