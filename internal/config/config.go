// Package config loads the service configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete candle service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required"`
}

// ProvidersConfig holds per-provider credentials and endpoints. Base URLs are
// only overridden in tests; empty values select each provider's public
// endpoint. A provider with no key configured is left out of the cascade.
type ProvidersConfig struct {
	Finnhub    ProviderConfig `yaml:"finnhub"`
	TwelveData ProviderConfig `yaml:"twelvedata"`
	Metaapi    MetaapiConfig  `yaml:"metaapi"`
}

// ProviderConfig configures one market data source.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// MetaapiConfig configures the broker-linked account source.
type MetaapiConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// CacheConfig controls the server-side result cache.
type CacheConfig struct {
	TTLHours int `yaml:"ttl_hours" validate:"gte=0"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path and the .env file if one exists.
// Environment variables override YAML values for secrets.
func Load(path string) (*Config, error) {
	// Load .env if present; a missing file is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a runnable configuration without a config file, driven
// entirely by environment variables.
func Default() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg
}

// BrokerTimeout returns the broker-source time box.
func (c *Config) BrokerTimeout() time.Duration {
	return time.Duration(c.Providers.Metaapi.TimeoutSeconds) * time.Second
}

// CacheTTL returns the server-side cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Providers.Finnhub.APIKey = v
	}

	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		cfg.Providers.TwelveData.APIKey = v
	}

	if v := os.Getenv("METAAPI_TOKEN"); v != "" {
		cfg.Providers.Metaapi.Token = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8087"
	}

	if cfg.Cache.TTLHours == 0 {
		cfg.Cache.TTLHours = 24
	}

	if cfg.Providers.Metaapi.TimeoutSeconds == 0 {
		cfg.Providers.Metaapi.TimeoutSeconds = 8
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
