package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"promptgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

All validation errors are reported together, not just the first one.

Examples:
  # Validate the default config
  promptgate validate

  # Validate a specific file
  promptgate validate --config /etc/promptgate/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	fmt.Printf("  listen address:      %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  requests per minute: %d\n", cfg.Limits.RequestsPerMinute)
	fmt.Printf("  requests per hour:   %d\n", cfg.Limits.RequestsPerHour)
	fmt.Printf("  requests per day:    %d\n", cfg.Limits.RequestsPerDay)
	fmt.Printf("  burst size:          %d\n", cfg.Limits.BurstSize)
	fmt.Printf("  strategy:            %s\n", cfg.Limits.Strategy)
	return nil
}
