// Package app provides the service that implements the dependencies
// required by the HTTP API.
package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/sleigh/internal/domain/reindeer"
	"github.com/okian/sleigh/internal/domain/sled"
	"github.com/okian/sleigh/pkg/logger"
	"github.com/okian/sleigh/pkg/metrics"
)

// Greeting is the body served on the root route.
const Greeting = "Hello, world!"

// Operation names used for stats and metrics labels.
const (
	OpGreet       = "greet"
	OpRecalibrate = "recalibrate"
	OpStrength    = "strength"
	OpContest     = "contest"
)

var operations = []string{OpGreet, OpRecalibrate, OpStrength, OpContest}

// Service implements the API dependencies for the challenge routes.
// It holds no per-request state; counters are the only shared data.
type Service struct {
	logger    logger.Logger
	now       func() time.Time
	startedAt time.Time

	// Populated once in New and only read afterwards.
	calls map[string]*atomic.Uint64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{
		now:   time.Now,
		calls: make(map[string]*atomic.Uint64, len(operations)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	for _, op := range operations {
		s.calls[op] = new(atomic.Uint64)
	}
	s.startedAt = s.now()
	return s
}

// Greet returns the fixed greeting.
func (s *Service) Greet(_ context.Context) string {
	s.record(OpGreet)
	return Greeting
}

// Recalibrate extracts the packet ids from a sled path and cubes their XOR.
func (s *Service) Recalibrate(ctx context.Context, path string) uint32 {
	ids := sled.Extract(path)
	metrics.RecordSledSegments(len(ids))
	result := sled.Cube(ids)

	s.log(ctx).Debug(ctx, "sled recalibrated",
		logger.Int("packets", len(ids)),
		logger.Uint32("result", result))
	s.record(OpRecalibrate)
	return result
}

// CombinedStrength sums the strength of the herd.
func (s *Service) CombinedStrength(_ context.Context, herd []reindeer.Reindeer) uint32 {
	metrics.RecordHerdSize(len(herd))
	total := reindeer.CombinedStrength(herd)
	s.record(OpStrength)
	return total
}

// Contest runs the four herd reductions.
func (s *Service) Contest(ctx context.Context, herd []reindeer.Reindeer) (reindeer.Standings, error) {
	metrics.RecordHerdSize(len(herd))
	standings, err := reindeer.Contest(herd)
	if err != nil {
		s.log(ctx).Debug(ctx, "contest rejected", logger.Error(err))
		return reindeer.Standings{}, err
	}
	s.record(OpContest)
	return standings, nil
}

// GetStats returns call counts per operation and the service uptime.
func (s *Service) GetStats() map[string]any {
	counts := make(map[string]uint64, len(s.calls))
	var total uint64
	for op, c := range s.calls {
		n := c.Load()
		counts[op] = n
		total += n
	}
	return map[string]any{
		"operations":    counts,
		"totalCalls":    total,
		"uptimeSeconds": s.now().Sub(s.startedAt).Seconds(),
		"startedAt":     s.startedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Service) log(ctx context.Context) logger.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

func (s *Service) record(op string) {
	s.calls[op].Add(1)
	metrics.RecordOperation(op)
}
