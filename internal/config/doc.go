// Package config provides centralized configuration management for the
// dashboard generator. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CGM_* for namespacing:
//
//	CGM_DATA_DIR=./data
//	CGM_DASHBOARD_FORMAT=html
//	CGM_GLUCOSE_TARGETLOW=3.9
//	CGM_LOGGING_LEVEL=debug
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves every input and output location from the configured
// data and output directories:
//
//	paths := cfg.ResolvePaths()
//	glucoseCSV := paths.GlucoseCSV
//	artifact := paths.DashboardPath("png")
//
// # Validation
//
// All configuration is validated at load time with go-playground/validator
// to ensure required fields are present, enum values are recognized, and
// the glucose target range is ordered.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
