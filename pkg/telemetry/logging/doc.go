// Package logging configures the process-wide structured logger.
//
// It wraps log/slog with level and format parsing so the logger can be
// driven from the YAML configuration. Components receive *slog.Logger
// values and add their own "component" attribute.
package logging
