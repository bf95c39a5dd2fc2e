package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration with all defaults applied and no file
// loaded.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file, applies defaults, and
// validates. Environment variables are not consulted; use
// LoadWithEnvOverrides for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Start from the defaults so boolean fields keep their default value
	// when the file omits them; decoding only touches fields the file sets.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// DRIFTWATCH_* environment variable overrides on top.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies DRIFTWATCH_SECTION_FIELD environment variable
// overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DRIFTWATCH_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DRIFTWATCH_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("DRIFTWATCH_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("DRIFTWATCH_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}

	if v := os.Getenv("DRIFTWATCH_POLICY_DIR"); v != "" {
		cfg.Policy.Dir = v
	}
	if v := os.Getenv("DRIFTWATCH_POLICY_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Policy.Watch = b
		}
	}

	if v := os.Getenv("DRIFTWATCH_ORCHESTRATOR_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Orchestrator.MaxConcurrent = n
		}
	}
	if v := os.Getenv("DRIFTWATCH_ORCHESTRATOR_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Orchestrator.CacheTTL = d
		}
	}
	if v := os.Getenv("DRIFTWATCH_ORCHESTRATOR_BATCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Orchestrator.BatchTimeout = d
		}
	}
	if v := os.Getenv("DRIFTWATCH_ORCHESTRATOR_FLUSH_SCHEDULE"); v != "" {
		cfg.Orchestrator.FlushSchedule = v
	}

	if v := os.Getenv("DRIFTWATCH_INVENTORY_BACKEND"); v != "" {
		cfg.Inventory.Backend = v
	}
	if v := os.Getenv("DRIFTWATCH_INVENTORY_SQLITE_PATH"); v != "" {
		cfg.Inventory.SQLitePath = v
	}

	if v := os.Getenv("DRIFTWATCH_RESULTS_BACKEND"); v != "" {
		cfg.Results.Backend = v
	}
	if v := os.Getenv("DRIFTWATCH_RESULTS_SQLITE_PATH"); v != "" {
		cfg.Results.SQLitePath = v
	}
}
