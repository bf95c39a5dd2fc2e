package config

import (
	"time"

	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
	"driftwatch-io/driftwatch/pkg/telemetry/logging"
	"driftwatch-io/driftwatch/pkg/telemetry/metrics"
)

// Config is the root application configuration.
type Config struct {
	Logging      logging.Config      `yaml:"logging"`
	Metrics      metrics.Config      `yaml:"metrics"`
	Policy       PolicyConfig        `yaml:"policy"`
	Orchestrator orchestrator.Config `yaml:"orchestrator"`
	Inventory    InventoryConfig     `yaml:"inventory"`
	Results      ResultsConfig       `yaml:"results"`
}

// PolicyConfig configures where rules come from.
type PolicyConfig struct {
	// Dir is the directory containing .dcl rule files.
	Dir string `yaml:"dir"`

	// Watch enables fsnotify-based hot reload of the rule directory.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the reload debounce quiet period.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// InventoryConfig configures the device inventory backend.
type InventoryConfig struct {
	// Backend selects the datastore: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// ResultsConfig configures evaluation result persistence.
type ResultsConfig struct {
	// Backend selects the datastore: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "driftwatch"
	}

	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = "policies"
	}
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = 100 * time.Millisecond
	}

	def := orchestrator.DefaultConfig()
	if cfg.Orchestrator.MaxConcurrent == 0 {
		cfg.Orchestrator.MaxConcurrent = def.MaxConcurrent
		cfg.Orchestrator.EnableCaching = def.EnableCaching
	}
	if cfg.Orchestrator.CacheTTL == 0 {
		cfg.Orchestrator.CacheTTL = def.CacheTTL
	}
	if cfg.Orchestrator.BatchTimeout == 0 {
		cfg.Orchestrator.BatchTimeout = def.BatchTimeout
	}

	if cfg.Inventory.Backend == "" {
		cfg.Inventory.Backend = "sqlite"
	}
	if cfg.Inventory.SQLitePath == "" {
		cfg.Inventory.SQLitePath = "data/inventory.db"
	}

	if cfg.Results.Backend == "" {
		cfg.Results.Backend = "sqlite"
	}
	if cfg.Results.SQLitePath == "" {
		cfg.Results.SQLitePath = "data/results.db"
	}
}
