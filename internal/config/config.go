// Package config loads settings from a YAML file overlaid by the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"menuboard/internal/logging"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// legacyBaseURLEnv is read when MENUBOARD_API_BASE_URL is unset.
const legacyBaseURLEnv = "REACT_APP_BACKEND_URL"

// ErrMissingBaseURL is returned when no API base URL is configured.
var ErrMissingBaseURL = errors.New("api base url is required")

type Config struct {
	API     APIConfig     `yaml:"api"`
	Web     WebConfig     `yaml:"web"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"MENUBOARD_API_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"MENUBOARD_API_TIMEOUT"`
}

type WebConfig struct {
	Addr string `yaml:"addr" env:"MENUBOARD_WEB_ADDR"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"MENUBOARD_METRICS_ENABLED"`
	Addr    string `yaml:"addr" env:"MENUBOARD_METRICS_ADDR"`
	Path    string `yaml:"path" env:"MENUBOARD_METRICS_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"MENUBOARD_LOG_LEVEL"`
	Format string `yaml:"format" env:"MENUBOARD_LOG_FORMAT"`
	File   string `yaml:"file" env:"MENUBOARD_LOG_FILE"`
}

type BackendConfig struct {
	Addr   string `yaml:"addr" env:"MENUBOARD_BACKEND_ADDR"`
	Driver string `yaml:"driver" env:"MENUBOARD_BACKEND_DRIVER"`
	DSN    string `yaml:"dsn" env:"MENUBOARD_BACKEND_DSN"`
	Seed   bool   `yaml:"seed" env:"MENUBOARD_BACKEND_SEED"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: "http://localhost:8001"},
		Web:     WebConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Enabled: true, Addr: ":9090", Path: "/metrics"},
		Log:     LogConfig{Level: "info", Format: "console"},
		Backend: BackendConfig{Addr: ":8001", Driver: "sqlite3", DSN: "menu.db", Seed: true},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v, ok := os.LookupEnv(legacyBaseURLEnv); ok {
		cfg.API.BaseURL = v
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields every binary depends on.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q: must be an absolute http(s) url", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}

	if c.Log.Level != "" && !slices.Contains(logging.Levels, c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	switch c.Backend.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported backend driver %q", c.Backend.Driver)
	}
	return nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
