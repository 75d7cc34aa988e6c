// Package jobs runs optional background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// CatchUpRunner advances every DCA schedule to a date.
type CatchUpRunner interface {
	CatchUpAll(ctx context.Context, date time.Time) (int, error)
}

// Scheduler owns the cron loop. Jobs never overlap themselves: a run that
// is still busy when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger
}

// NewScheduler creates a stopped Scheduler. Schedules use the standard
// five-field cron syntax evaluated in UTC.
func NewScheduler(logger *logging.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
	}
}

// AddCatchUp registers a job that advances every schedule to today.
// It only does work a later portfolio query would do anyway.
func (s *Scheduler) AddCatchUp(spec string, runner CatchUpRunner, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if _, err := s.cron.AddFunc(spec, CatchUpJob(runner, now, s.logger)); err != nil {
		return fmt.Errorf("invalid catch-up schedule %q: %w", spec, err)
	}
	s.logger.Info().Str("schedule", spec).Msg("DCA catch-up job registered")
	return nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("catch-up job still running at shutdown")
	}
}

// CatchUpJob returns the function run on every tick.
func CatchUpJob(runner CatchUpRunner, now func() time.Time, logger *logging.Logger) func() {
	return func() {
		start := time.Now()
		day := model.Day(now())

		periods, err := runner.CatchUpAll(context.Background(), day)
		event := logger.Info()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("date", model.FormatDate(day)).
			Int("periods", periods).
			Dur("duration", time.Since(start)).
			Msg("DCA catch-up finished")
	}
}
