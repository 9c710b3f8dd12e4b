// Package config handles configuration loading for graphawesome.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Render  RenderConfig  `mapstructure:"render"  yaml:"render" json:"render"`
	API     APIConfig     `mapstructure:"api"     yaml:"api" json:"api"`
	Feed    FeedConfig    `mapstructure:"feed"    yaml:"feed" json:"feed"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// RenderConfig holds chart rendering settings.
type RenderConfig struct {
	DefaultSize        int     `mapstructure:"default_size"         yaml:"default_size" json:"default_size"`                 // px, used when no size token is given
	MarginRatio        float64 `mapstructure:"margin_ratio"         yaml:"margin_ratio" json:"margin_ratio"`                 // margin as a fraction of width
	LegendItemRatio    float64 `mapstructure:"legend_item_ratio"    yaml:"legend_item_ratio" json:"legend_item_ratio"`       // legend swatch size as a fraction of width
	LegendPaddingRatio float64 `mapstructure:"legend_padding_ratio" yaml:"legend_padding_ratio" json:"legend_padding_ratio"` // legend padding as a fraction of width
	Workers            int     `mapstructure:"workers"              yaml:"workers" json:"workers"`                           // concurrent renders per document
	FontFile           string  `mapstructure:"font_file"            yaml:"font_file" json:"font_file"`                       // empty = bundled Go Regular
	Measurer           string  `mapstructure:"measurer"             yaml:"measurer" json:"measurer"`                         // "char" or "font"
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	CacheTTL    int      `mapstructure:"cache_ttl"    yaml:"cache_ttl" json:"cache_ttl"` // seconds
}

// FeedConfig holds RSS/Atom fetching settings.
type FeedConfig struct {
	TimeoutSec     int     `mapstructure:"timeout_sec"      yaml:"timeout_sec" json:"timeout_sec"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec" json:"requests_per_sec"`
	UserAgent      string  `mapstructure:"user_agent"       yaml:"user_agent" json:"user_agent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.graphawesome/config.yaml (home directory)
//  3. /etc/graphawesome/config.yaml (system)
//
// Environment variables override config file values.
// Format: GAWESOME_<SECTION>_<KEY>, e.g., GAWESOME_API_PORT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".graphawesome"))
	v.AddConfigPath("/etc/graphawesome")

	v.SetEnvPrefix("GAWESOME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GAWESOME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects settings the renderers cannot work with.
func (c *Config) Validate() error {
	r := c.Render
	if r.DefaultSize <= 0 {
		return fmt.Errorf("render.default_size must be positive, got %d", r.DefaultSize)
	}
	if r.MarginRatio < 0 || r.MarginRatio >= 0.5 {
		return fmt.Errorf("render.margin_ratio must be in [0, 0.5), got %g", r.MarginRatio)
	}
	if r.Workers <= 0 {
		return fmt.Errorf("render.workers must be positive, got %d", r.Workers)
	}
	switch r.Measurer {
	case "char", "font":
	default:
		return fmt.Errorf("render.measurer must be \"char\" or \"font\", got %q", r.Measurer)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Render defaults (the legacy 256px square chart)
	v.SetDefault("render.default_size", 256)
	v.SetDefault("render.margin_ratio", 0.1)
	v.SetDefault("render.legend_item_ratio", 0.1)
	v.SetDefault("render.legend_padding_ratio", 0.05)
	v.SetDefault("render.workers", 4)
	v.SetDefault("render.font_file", "")
	v.SetDefault("render.measurer", "char")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.cache_ttl", 300) // 5 minutes

	// Feed defaults
	v.SetDefault("feed.timeout_sec", 15)
	v.SetDefault("feed.requests_per_sec", 2.0)
	v.SetDefault("feed.user_agent", "graphawesome/1.0")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
