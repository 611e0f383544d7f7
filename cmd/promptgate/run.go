package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"promptgate/pkg/cli"
	"promptgate/pkg/config"
	"promptgate/pkg/limits"
	"promptgate/pkg/limits/ratelimit"
	"promptgate/pkg/server"
	"promptgate/pkg/telemetry/logging"
	"promptgate/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the PromptGate admission server",
	Long: `Start the PromptGate admission server with the specified configuration.

The server listens on the configured address and answers admission
checks, usage queries, and administrative resets.

Examples:
  # Start with default config
  promptgate run

  # Start with custom config
  promptgate run --config /etc/promptgate/config.yaml

  # Override listen address
  promptgate run --listen 0.0.0.0:8080

  # Validate config without starting server
  promptgate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx := cli.SetupSignalHandler()

	// Metrics registry shared by all components
	collector := metrics.NewCollector()

	manager, err := limits.NewManager(
		managerConfig(&cfg.Limits),
		limits.NewMetrics(collector.Registry()),
	)
	if err != nil {
		return fmt.Errorf("failed to create limits manager: %w", err)
	}
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start limits manager: %w", err)
	}
	defer manager.Stop()

	// Hot reload of the limits section
	if cfg.Limits.Watch {
		watcher, err := config.NewFileWatcher(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			watchErr := watcher.Watch(ctx, func() error {
				reloaded, err := config.LoadConfigWithEnvOverrides(cfgFile)
				if err != nil {
					return err
				}
				return manager.ApplyConfig(rateLimitConfig(&reloaded.Limits))
			})
			if watchErr != nil {
				slog.Error("config watcher exited", "error", watchErr)
			}
		}()
	}

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, manager, collector)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until the signal context cancels, then shuts down gracefully
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// managerConfig translates the file configuration into the limits
// manager's configuration.
func managerConfig(cfg *config.LimitsConfig) limits.Config {
	return limits.Config{
		RateLimit:     rateLimitConfig(cfg),
		CheckGlobal:   !cfg.DisableGlobal,
		IdleTTL:       cfg.IdleTTL,
		SweepSchedule: cfg.SweepSchedule,
	}
}

// rateLimitConfig translates the file configuration into the limiter's
// configuration.
func rateLimitConfig(cfg *config.LimitsConfig) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequestsPerHour:   cfg.RequestsPerHour,
		RequestsPerDay:    cfg.RequestsPerDay,
		BurstSize:         cfg.BurstSize,
		CostPerRequest:    cfg.CostPerRequest,
		Strategy:          ratelimit.Strategy(cfg.Strategy),
	}
}
