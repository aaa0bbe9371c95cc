// Package config handles TOML configuration for regiondex.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, applied after the file is parsed.
const (
	EnvDataURL  = "REGIONDEX_DATA_URL"
	EnvLogLevel = "REGIONDEX_LOG_LEVEL"
)

// Config is the root configuration structure.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Server ServerConfig `toml:"server"`
	Policy PolicyConfig `toml:"policy"`
	OTEL   OTELConfig   `toml:"otel"`
	Log    LogConfig    `toml:"log"`
}

// DataConfig controls where the catalog comes from and how long it is kept.
type DataConfig struct {
	URL                string `toml:"url"` // empty: bundled dataset only
	TimeoutStr         string `toml:"timeout"`
	CacheTTLStr        string `toml:"cache_ttl"`
	CachePath          string `toml:"cache_path"` // empty: no on-disk cache
	MaxStaleStr        string `toml:"max_stale"`
	RefreshIntervalStr string `toml:"refresh_interval"`

	Timeout         time.Duration `toml:"-"`
	CacheTTL        time.Duration `toml:"-"`
	MaxStale        time.Duration `toml:"-"`
	RefreshInterval time.Duration `toml:"-"`
}

// ServerConfig holds RPC server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PolicyConfig points at an optional rego module.
type PolicyConfig struct {
	Path string `toml:"path"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `toml:"endpoint"`
	Insecure    bool          `toml:"insecure"`
	ServiceName string        `toml:"service_name"`
	Traces      TracesConfig  `toml:"traces"`
	Metrics     MetricsConfig `toml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `toml:"enabled"`
	SampleRate float64 `toml:"sample_rate"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads a TOML config file. An empty path yields the defaults.
// A .env file in the working directory, if present, is loaded first so its
// variables can override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDataURL); v != "" {
		cfg.Data.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Data.TimeoutStr == "" {
		cfg.Data.TimeoutStr = "5s"
	}
	if cfg.Data.CacheTTLStr == "" {
		cfg.Data.CacheTTLStr = "1h"
	}
	if cfg.Data.MaxStaleStr == "" {
		cfg.Data.MaxStaleStr = "168h"
	}
	if cfg.Data.RefreshIntervalStr == "" {
		cfg.Data.RefreshIntervalStr = "6h"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "regiondex"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"data.timeout", cfg.Data.TimeoutStr, &cfg.Data.Timeout},
		{"data.cache_ttl", cfg.Data.CacheTTLStr, &cfg.Data.CacheTTL},
		{"data.max_stale", cfg.Data.MaxStaleStr, &cfg.Data.MaxStale},
		{"data.refresh_interval", cfg.Data.RefreshIntervalStr, &cfg.Data.RefreshInterval},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	if c.Data.Timeout <= 0 {
		return fmt.Errorf("data: timeout must be positive (got %s)", c.Data.Timeout)
	}
	if c.Data.CacheTTL < 0 {
		return fmt.Errorf("data: cache_ttl must not be negative (got %s)", c.Data.CacheTTL)
	}
	if c.Data.MaxStale < 0 {
		return fmt.Errorf("data: max_stale must not be negative (got %s)", c.Data.MaxStale)
	}
	if c.Data.RefreshInterval <= 0 {
		return fmt.Errorf("data: refresh_interval must be positive (got %s)", c.Data.RefreshInterval)
	}
	if c.OTEL.Traces.SampleRate < 0.0 || c.OTEL.Traces.SampleRate > 1.0 {
		return fmt.Errorf("otel: traces.sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.Traces.SampleRate)
	}
	return nil
}
