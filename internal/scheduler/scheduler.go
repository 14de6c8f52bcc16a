// Package scheduler runs the fallback rebuild on a cron schedule, so a
// rebuild lost to a transient failure is always retried even if no further
// change event arrives.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"tenantgrid/internal/cdc"
)

// Scheduler triggers rebuild-and-notify on a fixed cron schedule.
type Scheduler struct {
	manager  cdc.Rebuilder
	notifier cdc.Publisher
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// New constructs a scheduler. An empty schedule disables it.
func New(manager cdc.Rebuilder, notifier cdc.Publisher, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		manager:  manager,
		notifier: notifier,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled rebuilds and stops them when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.schedule == "" {
		s.logger.Info("reload schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("scheduled configuration reload starting")
		if err := s.manager.Rebuild(ctx); err != nil {
			s.logger.Error("scheduled rebuild failed", "error", err)
			return
		}
		if err := s.notifier.Publish(ctx); err != nil {
			s.logger.Error("scheduled rebuild notification failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reload: %w", err)
	}

	s.cron.Start()
	s.logger.Info("reload scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}
