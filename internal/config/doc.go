// Package config provides configuration management for the water exporter.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - TSME_USERNAME, TSME_PASSWORD: portal account
//   - TSME_COUNTER_ID: meter id, discovered from the portal when unset
//   - TSME_PROVIDER: provider registry name (default "toutsurmoneau")
//   - TSME_REFRESH_INTERVAL: Refresh interval in seconds (minimum: 60)
//   - TSME_HTTP_PORT: HTTP server port (1-65535)
//   - TSME_LOG_LEVEL: Log level (debug, info, warn, error)
//   - TSME_API_TIMEOUT: per-request timeout in seconds (1-300)
//   - TSME_ENABLE_DAILY_METRICS: export per-day and per-month series
//
// Example configuration file (config.yaml):
//
//	username: "jean@example.fr"
//	password: "secret"
//	provider: "toutsurmoneau"
//	refresh_interval: 3600  # 1 hour
//	http_port: 9110
//	log_level: "info"
//
// Load validates the merged result. Read and FromEnv stop before
// validation so the command line tool can merge its flags first.
package config
