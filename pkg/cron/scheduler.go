// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Purger is anything that can drop expired state and report how much it dropped.
type Purger interface {
	Purge() int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	// Standard 5-field cron format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		logger: logger,
	}
}

// AddPurgeJob schedules a recurring purge of expired state. name labels the
// job in logs; spec is a standard 5-field cron expression.
func (s *Scheduler) AddPurgeJob(name, spec string, purger Purger) error {
	_, err := s.cron.AddFunc(spec, func() {
		if purged := purger.Purge(); purged > 0 {
			s.logger.Info("purged expired entries",
				slog.String("job", name),
				slog.Int("count", purged),
			)
		}
	})
	return err
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}
