package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/sleigh/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20))
			convey.So(cfg.RateLimit, convey.ShouldEqual, 100.0)
			convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 200)
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":                func(c *config.Config) { c.Addr = "  " },
			"max_body_bytes must be positive":       func(c *config.Config) { c.MaxBodyBytes = 0 },
			"rate_limit must not be negative":       func(c *config.Config) { c.RateLimit = -1 },
			"rate_limit_burst must not be negative": func(c *config.Config) { c.RateLimitBurst = -1 },
			"rate_limit_burst must be positive":     func(c *config.Config) { c.RateLimitBurst = 0 },
			"shutdown_timeout must be positive":     func(c *config.Config) { c.ShutdownTimeout = 0 },
			"unknown log_format":                    func(c *config.Config) { c.LogFormat = "xml" },
		}

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})

	convey.Convey("Given rate limiting disabled", t, func() {
		cfg := config.New()
		cfg.RateLimit = 0
		cfg.RateLimitBurst = 0

		convey.Convey("Then a zero burst should be accepted", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SLEIGH_ADDR", ":8080")
			_ = os.Setenv("SLEIGH_LOG_LEVEL", "debug")
			_ = os.Setenv("SLEIGH_LOG_FORMAT", "json")
			_ = os.Setenv("SLEIGH_MAX_BODY_BYTES", "4096")
			_ = os.Setenv("SLEIGH_RATE_LIMIT", "2.5")
			_ = os.Setenv("SLEIGH_RATE_LIMIT_BURST", "5")
			_ = os.Setenv("SLEIGH_READ_TIMEOUT", "3s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(4096))
				convey.So(cfg.RateLimit, convey.ShouldEqual, 2.5)
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 5)
				convey.So(cfg.ReadTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.WriteTimeout, convey.ShouldEqual, 10*time.Second) // From defaults
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# comments are fine
addr: ":9090"  # inline too
rate_limit: 0
rate_limit_burst: 0
shutdown_timeout: 5s
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SLEIGH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RateLimit, convey.ShouldEqual, 0.0)
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 0)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20)) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
log_level: warn
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SLEIGH_CONFIG", tmpFile)
			_ = os.Setenv("SLEIGH_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SLEIGH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SLEIGH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SLEIGH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SLEIGH_MAX_BODY_BYTES", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid duration", func() {
			_ = os.Setenv("SLEIGH_IDLE_TIMEOUT", "forever")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SLEIGH_CONFIG",
		"SLEIGH_ADDR",
		"SLEIGH_LOG_LEVEL",
		"SLEIGH_LOG_FORMAT",
		"SLEIGH_MAX_BODY_BYTES",
		"SLEIGH_RATE_LIMIT",
		"SLEIGH_RATE_LIMIT_BURST",
		"SLEIGH_READ_TIMEOUT",
		"SLEIGH_IDLE_TIMEOUT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "sleigh-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
