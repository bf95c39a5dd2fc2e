package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"driftwatch-io/driftwatch/pkg/config"
	"driftwatch-io/driftwatch/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "Driftwatch - network-device compliance and remediation engine",
	Long: `Driftwatch evaluates DCL compliance rules against network-device
documents, reporting configuration drift and applying remediation
templates where rules call for them.

It provides:
  - A rule DSL (DCL) for declaring device compliance policies
  - Batched, concurrent policy evaluation with result caching
  - Transactional remediation with automatic rollback
  - SQLite-backed device inventory and result history

For more information, visit: https://github.com/driftwatch-io/driftwatch`,
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
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads configuration from the --config file, falling back to
// defaults when the default path does not exist. An explicitly provided
// path that cannot be read is an error.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
			cfg := config.Default()
			applyVerbose(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
	}

	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	applyVerbose(cfg)
	return cfg, nil
}

func applyVerbose(cfg *config.Config) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// setupLogging installs the configured logger as the process default and
// returns it.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	return logging.Setup(cfg.Logging)
}
