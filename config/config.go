// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Docs     DocsConfig     `yaml:"docs"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineConfig configures the resolver engine.
type EngineConfig struct {
	// MaxBodyBytes caps request bodies before parsing. Zero keeps the
	// built-in default; negative disables the cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DocsConfig configures the generated OpenAPI document and UI.
type DocsConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Title       string   `yaml:"title"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Servers     []string `yaml:"servers"`
}

// AuthConfig configures authentication for protected procedures.
// Use "none" to reject all protected calls or "apikey" for bearer keys.
type AuthConfig struct {
	Mode string      `yaml:"mode"` // "none" or "apikey"
	Keys []KeyConfig `yaml:"keys"`
}

// KeyConfig is one configured API key: an identifier plus the bcrypt
// hash of its secret. Plaintext secrets never appear in configuration.
type KeyConfig struct {
	ID   string `yaml:"id"`
	Hash string `yaml:"hash"`
}

// DatabaseConfig configures request log persistence.
// An empty DSN disables the request log.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration defaults. Load unmarshals on top of
// these, so omitted keys keep their default values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Docs: DocsConfig{
			Enabled: true,
			Title:   "rpcgate",
			Version: "1.0.0",
		},
		Auth: AuthConfig{
			Mode: "none",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads, parses, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Auth.Mode {
	case "none", "apikey":
	default:
		return fmt.Errorf("auth.mode must be \"none\" or \"apikey\", got %q", c.Auth.Mode)
	}
	if c.Auth.Mode == "apikey" && len(c.Auth.Keys) == 0 {
		return fmt.Errorf("auth.mode is \"apikey\" but no keys are configured")
	}
	for _, k := range c.Auth.Keys {
		if k.ID == "" || k.Hash == "" {
			return fmt.Errorf("auth.keys entries need both id and hash")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	if c.Database.DSN != "" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics.path must be set when metrics are enabled")
	}

	return nil
}

// applyEnvOverrides applies RPCGATE_* environment variables to the
// config. Environment variables always override file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RPCGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RPCGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RPCGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RPCGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RPCGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
