package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler drives the Evaluator on a fixed interval, with one early
// check shortly after startup so a restart doesn't wait a full interval.
type Scheduler struct {
	evaluator    *Evaluator
	interval     time.Duration
	startupDelay time.Duration
	logger       *slog.Logger
	clock        clockwork.Clock
}

// NewScheduler creates a Scheduler.
func NewScheduler(evaluator *Evaluator, interval, startupDelay time.Duration, logger *slog.Logger, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		evaluator:    evaluator,
		interval:     interval,
		startupDelay: startupDelay,
		logger:       logger,
		clock:        clock,
	}
}

// Run blocks until ctx is cancelled, triggering an evaluation pass on
// every tick. Callers start it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("alert scheduler started",
		"interval", s.interval, "startupDelay", s.startupDelay)

	startup := s.clock.After(s.startupDelay)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("alert scheduler stopped")
			return
		case <-startup:
			startup = nil
			s.pass(ctx)
		case <-ticker.Chan():
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	if err := s.evaluator.EvaluateAll(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("alert evaluation pass failed", "error", err)
	}
}
