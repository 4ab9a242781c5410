package herdcheck

import (
	"context"
	"fmt"

	"github.com/okian/sleigh/pkg/logger"
	"github.com/urfave/cli/v3"
)

// Command returns the herd-check CLI.
func Command() *cli.Command {
	d := DefaultConfig()
	return &cli.Command{
		Name:  "herd-check",
		Usage: "Check a running sleigh server against locally computed answers",
		Description: `Generates reproducible herds and sled paths from a seed, sends them to
the server concurrently and compares every answer with the local result.

Examples:
  herd-check --url http://localhost:8000
  herd-check --herds 5000 --sleds 5000 --workers 32 --seed 42
  herd-check --rate 0   # unpaced, for servers run with rate_limit 0`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: d.BaseURL,
				Usage: "Base URL of the service",
			},
			&cli.IntFlag{
				Name:  "herds",
				Value: d.Herds,
				Usage: "Number of herds sent to /4/strength and /4/contest",
			},
			&cli.IntFlag{
				Name:  "herd-size",
				Value: d.HerdSize,
				Usage: "Maximum reindeer per herd",
			},
			&cli.IntFlag{
				Name:  "sleds",
				Value: d.Sleds,
				Usage: "Number of sled paths sent to /1/",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: d.Workers,
				Usage: "Number of concurrent requests",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: d.Timeout,
				Usage: "HTTP request timeout",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: d.Seed,
				Usage: "Generator seed; the same seed replays the same run",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Value: d.Rate,
				Usage: "Requests per second sent to the server (0 disables pacing)",
			},
			&cli.IntFlag{
				Name:  "burst",
				Value: d.Burst,
				Usage: "Requests sent at once when pacing",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: logger.FormatText,
				Usage: "Log format (text, json)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := logger.Init(logger.WithFormat(cmd.String("log-format")), logger.WithWriter(cmd.Writer)); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if err := logger.SetLevelString(cmd.String("log-level")); err != nil {
				return err
			}

			stats, err := Run(ctx, configFromCommand(cmd))
			Report(ctx, stats)
			return err
		},
	}
}

func configFromCommand(cmd *cli.Command) *Config {
	return &Config{
		BaseURL:  cmd.String("url"),
		Herds:    cmd.Int("herds"),
		HerdSize: cmd.Int("herd-size"),
		Sleds:    cmd.Int("sleds"),
		Workers:  cmd.Int("workers"),
		Timeout:  cmd.Duration("timeout"),
		Seed:     cmd.Uint64("seed"),
		Rate:     cmd.Float64("rate"),
		Burst:    cmd.Int("burst"),
	}
}
