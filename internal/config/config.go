// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and SLEIGH_* env vars on top.
// - Validation failures wrap ErrInvalidConfig; loading failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`
	// MaxBodyBytes caps request bodies on the JSON routes.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	// RateLimitBurst is the token bucket size.
	RateLimitBurst int `koanf:"rate_limit_burst"`
	// HTTP server timeouts.
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8000",
		MaxBodyBytes:      1 << 20,
		RateLimit:         100,
		RateLimitBurst:    200,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	case c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate_limit_burst must not be negative", ErrInvalidConfig)
	case c.RateLimit > 0 && c.RateLimitBurst == 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate_limit is set", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
