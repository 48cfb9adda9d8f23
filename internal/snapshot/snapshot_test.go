package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/notifier"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
	"github.com/newthinker/tradelens/internal/storage/archive"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 20, 22, 30, 0, 0, time.UTC)
}

func setup(t *testing.T) (*service.Service, *archive.LocalFS) {
	t.Helper()
	ctx := context.Background()

	repo := trade.NewMemoryStore()
	for _, user := range []string{"alice", "bob"} {
		require.NoError(t, repo.SaveTrades(ctx, user, []core.TradeRecord{{
			ID:         "t1",
			Symbol:     "AAPL",
			AssetType:  core.AssetStock,
			Direction:  core.DirectionLong,
			EntryDate:  "2024-03-01",
			ExitDate:   "2024-03-04",
			EntryPrice: "100",
			ExitPrice:  "110",
			Quantity:   "10",
		}}))
	}

	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	loc := time.FixedZone("UZT", 5*60*60)
	svc := service.New(repo, service.Options{Location: loc, Now: fixedNow})
	return svc, fs
}

func TestPath(t *testing.T) {
	day := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "snapshots/alice/2024-03-21/this-month.json",
		Path("alice", day, period.Of(period.ThisMonth)))

	custom := period.Between(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "snapshots/alice/2024-03-21/custom_2024-01-01__2024-01-31.json",
		Path("alice", day, custom))
}

func TestJob_Run(t *testing.T) {
	svc, fs := setup(t)
	ctx := context.Background()

	job := NewJob(svc, fs, Options{Now: fixedNow, Timeout: time.Minute})
	result, err := job.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, Result{Users: 2, Written: 4}, result)

	// 22:30 UTC is already the 21st in the service's zone.
	paths, err := List(ctx, fs, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"snapshots/alice/2024-03-21/all-time.json",
		"snapshots/alice/2024-03-21/this-month.json",
	}, paths)

	snap, err := Load(ctx, fs, paths[0])
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.UserID)
	assert.Equal(t, "all-time", snap.Period)
	assert.Equal(t, 1, snap.Stats.TotalTrades)
	assert.InDelta(t, 100.0, snap.Stats.TotalPnL, 1e-9)
	require.Len(t, snap.Daily, 1)
}

func TestJob_CancelledContext(t *testing.T) {
	svc, fs := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJob(svc, fs, Options{Now: fixedNow}).Run(ctx)
	assert.ErrorIs(t, err, core.ErrSnapshotFailed)
}

// failingStorage rejects every write.
type failingStorage struct {
	archive.Storage
}

func (failingStorage) Write(ctx context.Context, path string, data []byte) error {
	return errors.New("disk full")
}

func TestJob_CountsFailures(t *testing.T) {
	svc, fs := setup(t)

	result, err := NewJob(svc, failingStorage{fs}, Options{
		Now:     fixedNow,
		Periods: []period.Period{period.Of(period.AllTime)},
	}).Run(context.Background())

	assert.ErrorIs(t, err, core.ErrSnapshotFailed)
	assert.Equal(t, Result{Users: 2, Failed: 2}, result)
}

// recordingNotifier keeps every event it is sent.
type recordingNotifier struct {
	events []notifier.Event
	err    error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Notify(ctx context.Context, event notifier.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestJob_NotifiesEachRun(t *testing.T) {
	svc, fs := setup(t)
	rec := &recordingNotifier{}

	job := NewJob(svc, fs, Options{
		Now:      fixedNow,
		Periods:  []period.Period{period.Of(period.AllTime)},
		Notifier: rec,
	})
	_, err := job.Run(context.Background())
	require.NoError(t, err)

	rec.err = errors.New("webhook down")
	_, err = NewJob(svc, failingStorage{fs}, Options{
		Now:      fixedNow,
		Periods:  []period.Period{period.Of(period.AllTime)},
		Notifier: rec,
	}).Run(context.Background())
	assert.ErrorIs(t, err, core.ErrSnapshotFailed, "notifier errors must not mask the run error")

	require.Len(t, rec.events, 2)
	assert.True(t, rec.events[0].Succeeded())
	assert.Equal(t, 2, rec.events[0].Written)
	assert.False(t, rec.events[1].Succeeded())
	assert.Equal(t, 2, rec.events[1].Failed)
	assert.Contains(t, rec.events[1].Error, "disk full")
}

func TestLoad_Missing(t *testing.T) {
	_, fs := setup(t)

	_, err := Load(context.Background(), fs, "snapshots/alice/2024-01-01/all-time.json")
	assert.ErrorIs(t, err, core.ErrTradesNotFound)
}

func TestNewScheduler(t *testing.T) {
	svc, fs := setup(t)
	job := NewJob(svc, fs, Options{Now: fixedNow})

	_, err := NewScheduler(job, "not a schedule", time.UTC, nil)
	assert.Error(t, err)

	s, err := NewScheduler(job, "0 2 * * *", time.UTC, nil)
	require.NoError(t, err)

	s.Start()
	assert.False(t, s.Next().IsZero())
	assert.Equal(t, 2, s.Next().Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
