package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "promptgate",
	Short: "PromptGate - admission control for LLM API traffic",
	Long: `PromptGate is an admission-control service that rate limits LLM API
traffic before it reaches a provider.

It enforces layered limits for each client identifier:
  - Token bucket burst control (per identifier and service-wide)
  - Sliding window ceilings per minute, hour, and day
  - Usage inspection and administrative resets over HTTP`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
