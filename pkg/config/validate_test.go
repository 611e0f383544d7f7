package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return DefaultConfig()
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestValidate_ServerErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = "no-port"
	cfg.Server.ReadTimeout = -1

	err := Validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("expected listen address error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "server.read_timeout") {
		t.Errorf("expected read timeout error, got: %v", err)
	}
}

func TestValidate_LimitsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "zero minute ceiling",
			mutate: func(c *Config) { c.Limits.RequestsPerMinute = 0 },
			field:  "limits.requests_per_minute",
		},
		{
			name:   "negative hour ceiling",
			mutate: func(c *Config) { c.Limits.RequestsPerHour = -1 },
			field:  "limits.requests_per_hour",
		},
		{
			name:   "zero day ceiling",
			mutate: func(c *Config) { c.Limits.RequestsPerDay = 0 },
			field:  "limits.requests_per_day",
		},
		{
			name:   "zero burst",
			mutate: func(c *Config) { c.Limits.BurstSize = 0 },
			field:  "limits.burst_size",
		},
		{
			name:   "zero cost",
			mutate: func(c *Config) { c.Limits.CostPerRequest = 0 },
			field:  "limits.cost_per_request",
		},
		{
			name:   "unknown strategy",
			mutate: func(c *Config) { c.Limits.Strategy = "optimistic" },
			field:  "limits.strategy",
		},
		{
			name:   "bad sweep schedule",
			mutate: func(c *Config) { c.Limits.SweepSchedule = "every tuesday" },
			field:  "limits.sweep_schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error for %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_TelemetryErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Telemetry.Logging.Format = "xml"
	cfg.Telemetry.Metrics.Path = "metrics"

	err := Validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{
		"telemetry.logging.level",
		"telemetry.logging.format",
		"telemetry.metrics.path",
	} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error for %s, got: %v", field, err)
		}
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "limits.burst_size", Message: "burst size must be positive"},
	}}
	if !strings.Contains(err.Error(), "limits.burst_size: burst size must be positive") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidationError_MultipleErrors(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("expected error count in message: %s", err.Error())
	}
}
