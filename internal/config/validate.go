package config

import "fmt"

// Validate enforces cross-field configuration rules. The generator and the
// streaming sessions treat an invalid configuration as fatal at startup, so
// every rule is checked here rather than at tick time.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range [1, 65535]", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 || cfg.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if cfg.Sensor.Interval <= 0 {
		return fmt.Errorf("sensor interval must be positive, got %v", cfg.Sensor.Interval)
	}

	if cfg.Store.HistorySize <= 0 {
		return fmt.Errorf("store history size must be positive, got %d", cfg.Store.HistorySize)
	}

	if cfg.Stream.HeartbeatInterval <= 0 {
		return fmt.Errorf("stream heartbeat interval must be positive, got %v", cfg.Stream.HeartbeatInterval)
	}
	if cfg.Stream.PollInterval <= 0 {
		return fmt.Errorf("stream poll interval must be positive, got %v", cfg.Stream.PollInterval)
	}
	if cfg.Stream.ClientTimeout <= cfg.Stream.HeartbeatInterval {
		return fmt.Errorf("stream client timeout (%v) must exceed heartbeat interval (%v)",
			cfg.Stream.ClientTimeout, cfg.Stream.HeartbeatInterval)
	}

	if cfg.FHIR.PatientReference == "" {
		return fmt.Errorf("FHIR patient reference cannot be empty")
	}

	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", cfg.Log.Format)
	}

	return nil
}
