package config

import "time"

// Config is the root configuration structure for PromptGate.
// It contains all configuration sections for the admission server,
// rate limits, and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Limits contains rate limiting configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP admission server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// LimitsConfig contains rate limiting configuration.
type LimitsConfig struct {
	// RequestsPerMinute is the per-identifier minute ceiling.
	// Default: 60
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerHour is the per-identifier hour ceiling.
	// Default: 1000
	RequestsPerHour int `yaml:"requests_per_hour"`

	// RequestsPerDay is the per-identifier day ceiling.
	// Default: 10000
	RequestsPerDay int `yaml:"requests_per_day"`

	// BurstSize is the per-identifier token bucket capacity. The
	// service-wide bucket holds one hundred times this value.
	// Default: 10
	BurstSize int `yaml:"burst_size"`

	// CostPerRequest is the default token cost charged per request
	// when the caller does not supply one.
	// Default: 1
	CostPerRequest int `yaml:"cost_per_request"`

	// Strategy selects how checks interact with the buckets.
	// Options: "consume" (spend tokens as layers pass), "precheck"
	// (peek all layers, spend only on full admission).
	// Default: "consume"
	Strategy string `yaml:"strategy"`

	// DisableGlobal turns off the service-wide bucket so only
	// per-identifier limits apply.
	// Default: false
	DisableGlobal bool `yaml:"disable_global"`

	// IdleTTL is how long an identifier may go unseen before its
	// limiting state is evicted.
	// Default: 1h
	IdleTTL time.Duration `yaml:"idle_ttl"`

	// SweepSchedule is the cron expression for the idle eviction job.
	// Default: "@every 10m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// Watch enables hot reloading of this file's limits section when
	// the configuration file changes on disk. A reload replaces the
	// limiter; accumulated usage state is discarded.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
