package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. JOBO_API_KEY
const EnvPrefix = "JOBO"

// Load loads the configuration from file, .env and the environment.
// A missing config file is not an error; the API key may come from the environment.
func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// JOBO_BASE_URL is the documented name; JOBO_API_BASE_URL is what AutomaticEnv derives
	_ = v.BindEnv("api.key", "JOBO_API_KEY")
	_ = v.BindEnv("api.base_url", "JOBO_BASE_URL", "JOBO_API_BASE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jobo"))
		}

		// Check /etc
		v.AddConfigPath("/etc/jobo/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "https://jobs-api.jobo.world")
	v.SetDefault("api.timeout", 30*time.Second)

	// Output defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.hyperlinks", true)

	// Geocode defaults
	v.SetDefault("geocode.concurrency", 4)
	v.SetDefault("geocode.rate_per_second", 5.0)

	// Update defaults
	v.SetDefault("update.repository", "Prakkie91/jobo-go")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if cfg.API.Key == "your-api-key-here" {
		return fmt.Errorf("api.key must be set to a valid API key")
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
		"csv":   true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output.format: %s (must be 'table', 'json' or 'csv')", cfg.Output.Format)
	}

	if cfg.Geocode.Concurrency < 1 {
		return fmt.Errorf("geocode.concurrency must be at least 1")
	}
	if cfg.Geocode.RatePerSecond < 0 {
		return fmt.Errorf("geocode.rate_per_second must not be negative")
	}

	return nil
}

// RequireAPIKey reports a helpful error when no API key is configured
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return fmt.Errorf("no API key configured: set api.key in the config file or %s_API_KEY", EnvPrefix)
	}
	return nil
}
