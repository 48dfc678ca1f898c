package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/provider"
)

// Configuration validation constants
const (
	MinRefreshInterval = 60    // Minimum refresh interval in seconds
	MinPort            = 1     // Minimum valid port number
	MaxPort            = 65535 // Maximum valid port number
	MaxAPITimeout      = 300   // Maximum per-request timeout in seconds

	// Default values
	DefaultProvider        = string(provider.Default)
	DefaultRefreshInterval = 3600 // 1 hour in seconds
	DefaultHTTPPort        = 9110
	DefaultLogLevel        = "info"
	DefaultAPITimeout      = 30 // Portal request timeout in seconds
)

// Config represents the application configuration
type Config struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	CounterID string `yaml:"counter_id"` // Discovered from the portal when empty
	Provider  string `yaml:"provider"`

	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	HTTPPort        int    `yaml:"http_port"`
	LogLevel        string `yaml:"log_level"`
	APITimeout      int    `yaml:"api_timeout"` // Portal request timeout in seconds

	// EnableDailyMetrics exports one series per day of the current and
	// previous month, and per month of the history. Pointer to tell unset from false.
	EnableDailyMetrics *bool `yaml:"enable_daily_metrics"`
}

// Load loads configuration from a YAML file, applies environment variable overrides and validates it
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Read loads a YAML file with defaults and environment overrides, without validation.
// The command line tool uses it before merging its flags.
func Read(path string) (*Config, error) {
	// #nosec G304 -- Config file path is provided by the operator via CLI flag, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&cfg)
}

// FromEnv builds a configuration from defaults and environment variables only
func FromEnv() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	return cfg, nil
}

// DailyMetricsEnabled reports whether per-day series are exported
func (c *Config) DailyMetricsEnabled() bool {
	return c.EnableDailyMetrics == nil || *c.EnableDailyMetrics
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	textVars := map[string]*string{
		"TSME_USERNAME":   &cfg.Username,
		"TSME_PASSWORD":   &cfg.Password,
		"TSME_COUNTER_ID": &cfg.CounterID,
		"TSME_PROVIDER":   &cfg.Provider,
		"TSME_LOG_LEVEL":  &cfg.LogLevel,
	}
	for name, dst := range textVars {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}

	intVars := map[string]*int{
		"TSME_REFRESH_INTERVAL": &cfg.RefreshInterval,
		"TSME_HTTP_PORT":        &cfg.HTTPPort,
		"TSME_API_TIMEOUT":      &cfg.APITimeout,
	}
	for name, dst := range intVars {
		if val := os.Getenv(name); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s: must be an integer, got %q", name, val)
			}
			*dst = i
		}
	}

	if val := os.Getenv("TSME_ENABLE_DAILY_METRICS"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid TSME_ENABLE_DAILY_METRICS: must be a boolean, got %q", val)
		}
		cfg.EnableDailyMetrics = &b
	}

	return nil
}

// Validate checks a fully merged configuration
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Username) == "" {
		return errors.New("username is required")
	}
	if cfg.Password == "" {
		return errors.New("password is required")
	}

	if !provider.IsKnown(cfg.Provider) {
		return fmt.Errorf("unknown provider %q, known providers: %v", cfg.Provider, provider.Providers())
	}

	if cfg.CounterID != "" {
		if _, err := strconv.ParseUint(cfg.CounterID, 10, 64); err != nil {
			return fmt.Errorf("counter_id must be numeric, got %q", cfg.CounterID)
		}
	}

	// Check for negative or zero refresh interval
	if cfg.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %d", cfg.RefreshInterval)
	}

	if cfg.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %d seconds", MinRefreshInterval)
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	// Validate API timeout
	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}

	if cfg.APITimeout > MaxAPITimeout {
		return fmt.Errorf("api_timeout should not exceed %d seconds (5 minutes), got %d", MaxAPITimeout, cfg.APITimeout)
	}

	return nil
}

// RefreshIntervalDuration returns RefreshInterval as a time.Duration
func (c *Config) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// APITimeoutDuration returns APITimeout as a time.Duration
func (c *Config) APITimeoutDuration() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}
