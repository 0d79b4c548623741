// Package config loads the application configuration from an optional YAML
// file with environment variable overrides. Environment values always win
// over the file so tokens never need to be written to disk.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Todoist TodoistConfig `yaml:"todoist"`
	Notion  NotionConfig  `yaml:"notion"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	// Addr is the API listen address
	Addr string `yaml:"addr"`

	// MetricsAddr is the Prometheus listen address
	MetricsAddr string `yaml:"metrics_addr"`
}

// TodoistConfig configures the Todoist source.
type TodoistConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// NotionConfig configures the Notion read proxy.
type NotionConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Format is json or text
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":3001",
			MetricsAddr: ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration: defaults, then the YAML file at path (if
// path is non-empty the file must exist; otherwise a missing file is fine),
// then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODOIST_TOKEN"); v != "" {
		cfg.Todoist.Token = v
	}
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}
	if v := os.Getenv("UPNEXT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("UPNEXT_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("UPNEXT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("UPNEXT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks the configuration for values that would fail later in
// confusing ways. Tokens are not required here: the server reports their
// absence per request and the CLI resolves them from the token store.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	return nil
}
