package config

import (
	"fmt"
	"strings"

	"driftwatch-io/driftwatch/pkg/telemetry/logging"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "orchestrator.max_concurrent").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all field errors found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:", len(e.Errors)))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every problem found.
func Validate(cfg *Config) error {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, FieldError{Field: "logging.level", Message: err.Error()})
	}
	if _, err := logging.ParseFormat(cfg.Logging.Format); err != nil {
		errs = append(errs, FieldError{Field: "logging.format", Message: err.Error()})
	}

	if err := cfg.Orchestrator.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "orchestrator", Message: err.Error()})
	}

	if cfg.Inventory.Backend != "memory" && cfg.Inventory.Backend != "sqlite" {
		errs = append(errs, FieldError{
			Field:   "inventory.backend",
			Message: fmt.Sprintf("unknown backend %q (want memory or sqlite)", cfg.Inventory.Backend),
		})
	}
	if cfg.Inventory.Backend == "sqlite" && cfg.Inventory.SQLitePath == "" {
		errs = append(errs, FieldError{Field: "inventory.sqlite_path", Message: "required for sqlite backend"})
	}

	if cfg.Results.Backend != "memory" && cfg.Results.Backend != "sqlite" {
		errs = append(errs, FieldError{
			Field:   "results.backend",
			Message: fmt.Sprintf("unknown backend %q (want memory or sqlite)", cfg.Results.Backend),
		})
	}
	if cfg.Results.Backend == "sqlite" && cfg.Results.SQLitePath == "" {
		errs = append(errs, FieldError{Field: "results.sqlite_path", Message: "required for sqlite backend"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
