// Package config provides configuration management for PromptGate.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention
// PROMPTGATE_SECTION_FIELD. For example:
//
//   - PROMPTGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - PROMPTGATE_LIMITS_BURST_SIZE overrides limits.burst_size
//   - PROMPTGATE_LOG_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration.
//
// # Hot Reload
//
// When limits.watch is enabled, a FileWatcher observes the
// configuration file and the service rebuilds its limiter from the
// limits section on every change. Reload replaces accumulated usage
// state; see the limits package for the semantics.
package config
