package orchestrator

import (
	"fmt"
	"time"
)

// Config controls orchestrator behavior.
type Config struct {
	// MaxConcurrent bounds how many batches evaluate in parallel during a
	// flush.
	MaxConcurrent int `yaml:"max_concurrent"`

	// CacheTTL is how long aggregated results stay cached.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// BatchTimeout marks a pending batch overdue. Overdue batches are
	// never dropped; they run at the next flush.
	BatchTimeout time.Duration `yaml:"batch_timeout"`

	// EnableCaching toggles the result cache.
	EnableCaching bool `yaml:"enable_caching"`

	// FlushSchedule is an optional cron expression for periodic flushes.
	// Empty disables the scheduler.
	FlushSchedule string `yaml:"flush_schedule"`
}

// DefaultConfig returns the orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 10,
		CacheTTL:      5 * time.Minute,
		BatchTimeout:  30 * time.Second,
		EnableCaching: true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative, got %s", c.CacheTTL)
	}
	if c.BatchTimeout < 0 {
		return fmt.Errorf("batch_timeout cannot be negative, got %s", c.BatchTimeout)
	}
	return nil
}
