package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is unmarshalled over the defaults, so absent fields keep
// their default values. The result is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PROMPTGATE_SECTION_FIELD (e.g., PROMPTGATE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file over defaults
//  2. Apply environment variable overrides
//  3. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format PROMPTGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("PROMPTGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PROMPTGATE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("PROMPTGATE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("PROMPTGATE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Limits overrides
	if val := os.Getenv("PROMPTGATE_LIMITS_REQUESTS_PER_MINUTE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Limits.RequestsPerMinute = n
		}
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_REQUESTS_PER_HOUR"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Limits.RequestsPerHour = n
		}
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_REQUESTS_PER_DAY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Limits.RequestsPerDay = n
		}
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_BURST_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Limits.BurstSize = n
		}
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_COST_PER_REQUEST"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Limits.CostPerRequest = n
		}
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_STRATEGY"); val != "" {
		cfg.Limits.Strategy = val
	}
	if val := os.Getenv("PROMPTGATE_LIMITS_DISABLE_GLOBAL"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Limits.DisableGlobal = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("PROMPTGATE_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PROMPTGATE_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PROMPTGATE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
