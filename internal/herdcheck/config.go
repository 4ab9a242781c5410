// Package herdcheck drives a running sleigh server with generated herds and
// sled paths and compares every answer with the locally computed one.
package herdcheck

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"
)

// Default run settings.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultHerds    = 200
	DefaultHerdSize = 8
	DefaultSleds    = 500
	DefaultTimeout  = 10 * time.Second
	DefaultSeed     = 1225

	// DefaultRate and DefaultBurst stay within the server's default token bucket.
	DefaultRate  = 100
	DefaultBurst = 10

	workersPerCPU = 2
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Herds    int           // Number of herds sent to both herd routes
	HerdSize int           // Upper bound on reindeer per herd
	Sleds    int           // Number of sled paths to recalibrate
	Workers  int           // Number of concurrent requests
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Generator seed; equal seeds give equal runs
	Rate     float64       // Requests per second; 0 disables pacing
	Burst    int           // Requests allowed at once when pacing
}

// DefaultConfig returns a Config with the default settings.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Herds:    DefaultHerds,
		HerdSize: DefaultHerdSize,
		Sleds:    DefaultSleds,
		Workers:  runtime.NumCPU() * workersPerCPU,
		Timeout:  DefaultTimeout,
		Seed:     DefaultSeed,
		Rate:     DefaultRate,
		Burst:    DefaultBurst,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: url: %w", ErrInvalidConfig, err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%w: url scheme must be http or https, got %q", ErrInvalidConfig, u.Scheme)
	case u.Host == "":
		return fmt.Errorf("%w: url has no host", ErrInvalidConfig)
	case c.Herds < 0:
		return fmt.Errorf("%w: herds must not be negative", ErrInvalidConfig)
	case c.HerdSize < 1:
		return fmt.Errorf("%w: herd-size must be at least 1", ErrInvalidConfig)
	case c.Sleds < 0:
		return fmt.Errorf("%w: sleds must not be negative", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.Rate < 0:
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidConfig)
	case c.Rate > 0 && c.Burst < 1:
		return fmt.Errorf("%w: burst must be at least 1 when rate is set", ErrInvalidConfig)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Checks     int
	Passed     int
	Mismatched int
	Failed     int // transport errors and unexpected statuses
	ByKind     map[string]int
	Mismatches []*Mismatch // first maxReportedMismatches only
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
