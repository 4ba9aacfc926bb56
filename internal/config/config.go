// Package config loads application configuration from a YAML file and
// WIGLE_-prefixed environment variables. Credentials come from the
// environment or config file; the pipeline never persists them itself.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`

	// MetricsAddr serves Prometheus metrics during long runs when set
	// (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// APIConfig holds WiGLE API credentials and client tuning.
type APIConfig struct {
	// Username is the WiGLE API name (WIGLE_API_USERNAME).
	Username string `yaml:"username" mapstructure:"username"`

	// Token is the WiGLE API token (WIGLE_API_TOKEN).
	Token string `yaml:"token" mapstructure:"token"`

	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`

	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// OutputConfig holds run output defaults; flags override per run.
type OutputConfig struct {
	Root     string `yaml:"root" mapstructure:"root"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
	MaxPages int    `yaml:"max_pages" mapstructure:"max_pages"`
	KeepJSON bool   `yaml:"keep_json" mapstructure:"keep_json"`
}

// CacheConfig enables the Redis detail-response cache when RedisAddr is
// set.
type CacheConfig struct {
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTLHours  int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the configured cache TTL.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// Timeout returns the per-request HTTP timeout.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Load reads wigle-export.yaml from the working directory or
// ~/.config/wigle-export, overlays WIGLE_ environment variables, and
// applies defaults. A missing config file is fine; missing credentials
// are caught later when the client is constructed.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("wigle-export")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/wigle-export")

	v.SetEnvPrefix("WIGLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials default empty so AutomaticEnv can bind them even when
	// no config file mentions them.
	v.SetDefault("api.username", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.base_url", "https://api.wigle.net")
	v.SetDefault("api.user_agent", "wigle-export/1.0")
	v.SetDefault("api.rate_limit", 2.0)
	v.SetDefault("api.timeout_seconds", 60)
	v.SetDefault("output.root", ".")
	v.SetDefault("output.page_size", 100)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
