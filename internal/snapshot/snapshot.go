// Package snapshot archives per-user stats reports on a cron schedule.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/logger"
	"github.com/newthinker/tradelens/internal/metrics"
	"github.com/newthinker/tradelens/internal/notifier"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/storage/archive"
)

const (
	rootDir       = "snapshots"
	notifyTimeout = 30 * time.Second
)

// Snapshot is one archived report.
type Snapshot struct {
	UserID      string                 `json:"user_id"`
	Period      string                 `json:"period"`
	Range       analytics.DateRange    `json:"range"`
	GeneratedAt time.Time              `json:"generated_at"`
	Stats       analytics.StatsResult  `json:"stats"`
	Daily       []analytics.DailyPoint `json:"daily"`
}

// Result summarizes one run.
type Result struct {
	Users   int `json:"users"`
	Written int `json:"written"`
	Failed  int `json:"failed"`
}

// Job writes one snapshot per user and period.
type Job struct {
	svc      *service.Service
	storage  archive.Storage
	periods  []period.Period
	timeout  time.Duration
	metrics  *metrics.Registry
	notifier notifier.Notifier
	log      *zap.Logger
	now      func() time.Time
}

// Options configures a Job.
type Options struct {
	Periods  []period.Period // Defaults to this month and all time
	Timeout  time.Duration   // Per run, 0 means none
	Metrics  *metrics.Registry
	Notifier notifier.Notifier // Optional, told about every finished run
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewJob creates a snapshot job.
func NewJob(svc *service.Service, storage archive.Storage, opts Options) *Job {
	j := &Job{
		svc:      svc,
		storage:  storage,
		periods:  opts.Periods,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		log:      logger.OrNop(opts.Logger),
		now:      opts.Now,
	}
	if len(j.periods) == 0 {
		j.periods = []period.Period{period.Of(period.ThisMonth), period.Of(period.AllTime)}
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j
}

// Path returns the archive path of a user's snapshot for a day and period.
func Path(userID string, day time.Time, p period.Period) string {
	name := strings.NewReplacer(":", "_", ".", "_").Replace(p.String())
	return File(userID, day.Format(analytics.DateLayout), name+".json")
}

// File returns the archive path of a snapshot file by its day key and name.
func File(userID, day, name string) string {
	return path.Join(rootDir, userID, day, name)
}

// Run snapshots every user. Individual failures are logged and counted; the
// returned error is set when any snapshot failed or the run was cancelled.
func (j *Job) Run(ctx context.Context) (Result, error) {
	runCtx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := j.run(runCtx)

	status := "success"
	if err != nil {
		status = "failure"
	}
	if j.metrics != nil {
		j.metrics.RecordSnapshot(status, time.Since(start).Seconds())
	}
	j.log.Info("snapshot run finished",
		zap.Int("users", result.Users),
		zap.Int("written", result.Written),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)

	if j.notifier != nil {
		j.notify(ctx, start, result, err)
	}
	return result, err
}

// notify reports the run. Delivery failures are logged, never returned.
func (j *Job) notify(ctx context.Context, start time.Time, result Result, runErr error) {
	event := notifier.Event{
		Type:       "snapshot",
		Users:      result.Users,
		Written:    result.Written,
		Failed:     result.Failed,
		StartedAt:  start.UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}

	// A run that hit its own timeout still gets reported.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := j.notifier.Notify(ctx, event); err != nil {
		j.log.Warn("snapshot notification failed",
			zap.String("notifier", j.notifier.Name()),
			zap.Error(err),
		)
	}
}

func (j *Job) run(ctx context.Context) (Result, error) {
	var result Result

	users, err := j.svc.Users(ctx)
	if err != nil {
		return result, core.WrapError(core.ErrSnapshotFailed, fmt.Errorf("list users: %w", err))
	}
	result.Users = len(users)

	day := j.now().In(j.svc.Location())
	var errs []error
	for _, user := range users {
		for _, p := range j.periods {
			if err := ctx.Err(); err != nil {
				return result, core.WrapError(core.ErrSnapshotFailed, err)
			}
			if err := j.write(ctx, user, day, p); err != nil {
				result.Failed++
				errs = append(errs, err)
				j.log.Warn("snapshot failed",
					zap.String("user", user),
					zap.String("period", p.String()),
					zap.Error(err),
				)
				continue
			}
			result.Written++
		}
	}

	if len(errs) > 0 {
		return result, core.WrapError(core.ErrSnapshotFailed, errors.Join(errs...))
	}
	return result, nil
}

func (j *Job) write(ctx context.Context, userID string, day time.Time, p period.Period) error {
	q := service.Query{UserID: userID, Period: p, Category: core.CategoryTotal}

	view, err := j.svc.Stats(ctx, q)
	if err != nil {
		return err
	}
	daily, err := j.svc.Daily(ctx, q)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(Snapshot{
		UserID:      userID,
		Period:      p.String(),
		Range:       view.Range,
		GeneratedAt: j.now().UTC(),
		Stats:       view.Stats,
		Daily:       daily,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return j.storage.Write(ctx, Path(userID, day, p), data)
}

// List returns the archived snapshot paths for a user, oldest first.
func List(ctx context.Context, storage archive.Storage, userID string) ([]string, error) {
	paths, err := storage.List(ctx, path.Join(rootDir, userID))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return paths, nil
}

// Load reads one archived snapshot.
func Load(ctx context.Context, storage archive.Storage, p string) (*Snapshot, error) {
	data, err := storage.Read(ctx, p)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return nil, core.WrapError(core.ErrTradesNotFound, err)
		}
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decode snapshot: %w", err))
	}
	return &snap, nil
}
