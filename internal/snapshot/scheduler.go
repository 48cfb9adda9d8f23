package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/logger"
)

// Scheduler runs a Job on a standard five-field cron schedule.
type Scheduler struct {
	cron *cron.Cron
	job  *Job
	log  *zap.Logger
}

// NewScheduler registers the job. The schedule is evaluated in loc.
func NewScheduler(job *Job, schedule string, loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		job:  job,
		log:  logger.OrNop(log),
	}

	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("register snapshot job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	// Errors are already logged by the job.
	s.job.Run(context.Background())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("snapshot scheduler started", zap.Time("next_run", s.Next()))
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("snapshot scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
