package herdcheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/sleigh/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	maxReportedMismatches = 20
	percentageMultiplier  = 100
)

// Run executes the complete check against cfg.BaseURL. The returned Stats are
// populated even when an error is returned, unless cfg is invalid.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("herdcheck")
	stats := &Stats{StartTime: time.Now(), ByKind: make(map[string]int)}

	log.Info(ctx, "starting herd check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("herds", cfg.Herds),
		logger.Int("herdSize", cfg.HerdSize),
		logger.Int("sleds", cfg.Sleds),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", cfg.Seed),
		logger.Float64("rate", cfg.Rate),
		logger.Int("burst", cfg.Burst))

	client := NewClient(cfg.BaseURL, cfg.Timeout, WithRateLimit(cfg.Rate, cfg.Burst))

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Step 2: Generate checks
	checks := NewGenerator(cfg.Seed).Checks(cfg)
	log.Info(ctx, "generated checks", logger.Int("count", len(checks)))

	// Step 3: Run checks concurrently
	var (
		mu     sync.Mutex
		failed []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, c := range checks {
		g.Go(func() error {
			err := c.Verify(gctx, client)

			mu.Lock()
			defer mu.Unlock()
			record(stats, c.Kind, err)
			if err != nil && len(failed) < maxReportedMismatches {
				failed = append(failed, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("check cancelled: %w", err)
	}
	for _, err := range failed {
		log.Warn(ctx, "check failed", logger.Error(err))
	}
	switch {
	case stats.Mismatched > 0:
		return stats, fmt.Errorf("%w: %d of %d checks", ErrMismatch, stats.Mismatched, stats.Checks)
	case stats.Failed > 0:
		return stats, fmt.Errorf("%d of %d checks failed: %w", stats.Failed, stats.Checks, errors.Join(failed...))
	}
	return stats, nil
}

func record(stats *Stats, kind string, err error) {
	stats.Checks++
	stats.ByKind[kind]++

	var mismatch *Mismatch
	switch {
	case err == nil:
		stats.Passed++
	case errors.As(err, &mismatch):
		stats.Mismatched++
		if len(stats.Mismatches) < maxReportedMismatches {
			stats.Mismatches = append(stats.Mismatches, mismatch)
		}
	default:
		stats.Failed++
	}
}

// Report logs the final run statistics.
func Report(ctx context.Context, stats *Stats) {
	if stats == nil {
		return
	}
	var passRate, checksPerSecond float64
	if stats.Checks > 0 {
		passRate = float64(stats.Passed) / float64(stats.Checks) * percentageMultiplier
	}
	if stats.Duration > 0 {
		checksPerSecond = float64(stats.Checks) / stats.Duration.Seconds()
	}

	log := logger.Get().Named("herdcheck")
	log.Info(ctx, "final statistics",
		logger.Int("checks", stats.Checks),
		logger.Int("passed", stats.Passed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Any("byKind", stats.ByKind),
		logger.Duration("duration", stats.Duration),
		logger.Float64("passRate", passRate),
		logger.Float64("checksPerSecond", checksPerSecond))

	for _, m := range stats.Mismatches {
		log.Error(ctx, "mismatch",
			logger.String("kind", m.Kind),
			logger.String("input", m.Input),
			logger.String("want", m.Want),
			logger.String("got", m.Got))
	}
}
