package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
	"github.com/couchcryptid/swe-alert-service/internal/observability"
)

// CheckRunner is satisfied by *Checker.
type CheckRunner interface {
	Check(ctx context.Context) (domain.CheckResult, error)
}

// Scheduler runs checks on a fixed interval.
type Scheduler struct {
	checker  CheckRunner
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewScheduler creates a Scheduler. A nil clock uses real time.
func NewScheduler(checker CheckRunner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		checker:  checker,
		clock:    clock,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a check has completed successfully.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no successful check yet")
	}
	return nil
}

// Run checks immediately, then once per interval, until ctx is cancelled.
// Failed checks are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.checker.Check(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("check failed, retrying next interval", "error", err, "next_in", s.interval)
		return
	}
	s.ready.Store(true)
}
