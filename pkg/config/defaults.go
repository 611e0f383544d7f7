package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Limits defaults
	DefaultRequestsPerMinute = 60
	DefaultRequestsPerHour   = 1000
	DefaultRequestsPerDay    = 10000
	DefaultBurstSize         = 10
	DefaultCostPerRequest    = 1
	DefaultStrategy          = "consume"
	DefaultIdleTTL           = time.Hour
	DefaultSweepSchedule     = "@every 10m"

	// Telemetry defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultConfig returns a configuration populated with all default
// values. LoadConfig unmarshals the file over this base so boolean
// fields whose default is true survive being absent from the file.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued scalar
// fields in the configuration.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Limits defaults
	if cfg.Limits.RequestsPerMinute == 0 {
		cfg.Limits.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.Limits.RequestsPerHour == 0 {
		cfg.Limits.RequestsPerHour = DefaultRequestsPerHour
	}
	if cfg.Limits.RequestsPerDay == 0 {
		cfg.Limits.RequestsPerDay = DefaultRequestsPerDay
	}
	if cfg.Limits.BurstSize == 0 {
		cfg.Limits.BurstSize = DefaultBurstSize
	}
	if cfg.Limits.CostPerRequest == 0 {
		cfg.Limits.CostPerRequest = DefaultCostPerRequest
	}
	if cfg.Limits.Strategy == "" {
		cfg.Limits.Strategy = DefaultStrategy
	}
	if cfg.Limits.IdleTTL == 0 {
		cfg.Limits.IdleTTL = DefaultIdleTTL
	}
	if cfg.Limits.SweepSchedule == "" {
		cfg.Limits.SweepSchedule = DefaultSweepSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
