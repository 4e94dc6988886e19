package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Output  OutputConfig  `mapstructure:"output"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Update  UpdateConfig  `mapstructure:"update"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds Jobo API connection details
type APIConfig struct {
	Key     string        `mapstructure:"key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format     string `mapstructure:"format"`
	Hyperlinks bool   `mapstructure:"hyperlinks"`
}

// GeocodeConfig bounds batch geocoding
type GeocodeConfig struct {
	Concurrency   int     `mapstructure:"concurrency"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// UpdateConfig configures self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
