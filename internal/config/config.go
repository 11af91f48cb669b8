// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// GRADEBOOK_CONFIG, then GRADEBOOK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the history backend.
	Store string `koanf:"store"`

	// HistoryPath is the JSON document used by the file store.
	HistoryPath string `koanf:"history_path"`

	// DatabaseDSN is passed to the sqlite or postgres driver. Empty selects a local default.
	DatabaseDSN string `koanf:"database_dsn"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins string `koanf:"cors_origins"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Store:            StoreFile,
		HistoryPath:      "data/evaluation_history.json",
		RedisAddr:        "localhost:6379",
		RedisKey:         "gradebook:history",
		CORSOrigins:      "*",
		RequestTimeoutMS: 5000,
	}
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	case StoreFile:
		if strings.TrimSpace(c.HistoryPath) == "" {
			return fmt.Errorf("%w: history_path is required for the file store", ErrInvalidConfig)
		}
	case StoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("%w: redis_db must not be negative", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
