// Package config defines the application configuration and its loading
// pipeline: YAML file, defaults, environment variable overrides, then
// validation. Environment variables use the DRIFTWATCH_SECTION_FIELD
// naming convention and always take precedence over file values.
package config
