package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/layer-3/trustgate/adapters/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	cutoff time.Time
	err    error
}

func (f *fakeSweeper) Sweep(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestSweepJobUsesRetention(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}
	job := NewSweepJob(sweeper, 24*time.Hour, nil)
	job.now = func() time.Time { return now }

	removed, err := job.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, now.Add(-24*time.Hour), sweeper.cutoff)

	task, err := NewSweepTask(SweepPayload{Retention: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeRevocationSweep, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, now.Add(-time.Hour), sweeper.cutoff)
}

func TestSweepJobAgainstMemoryStore(t *testing.T) {
	revoked := store.NewMemoryStore(time.Hour)
	_, err := revoked.Revoke(context.Background(), "old-token")
	require.NoError(t, err)

	job := NewSweepJob(revoked, time.Hour, nil)
	job.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	removed, err := job.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSweepJobErrors(t *testing.T) {
	job := NewSweepJob(&fakeSweeper{err: errors.New("db down")}, time.Hour, nil)

	_, err := job.Run(context.Background(), 0)
	assert.Error(t, err)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeRevocationSweep, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		NewSweepJob(&fakeSweeper{}, time.Hour, nil).RunEvery(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop did not stop")
	}
}

func TestNewWorker(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}

	task, err := NewSweepTask(SweepPayload{})
	require.NoError(t, err)

	job := NewSweepJob(&fakeSweeper{}, time.Hour, nil)
	_, err = NewWorker(WorkerConfig{
		RedisOpts: opts,
		Handlers:  []TaskHandler{{Type: TaskTypeRevocationSweep, Handler: job.Handle}},
		Cron:      []CronRegistration{{Spec: "@every 1h", Task: task}},
	})
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: opts,
		Cron:      []CronRegistration{{Spec: "not a cron spec", Task: task}},
	})
	assert.Error(t, err)

	_, err = NewWorker(WorkerConfig{})
	assert.Error(t, err)
}
