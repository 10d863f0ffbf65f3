// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Defaults are applied after load so the rest of the code never re-checks
// for zero values.
package config
