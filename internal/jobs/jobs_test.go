package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct {
	mu       sync.Mutex
	calls    int
	grace    time.Duration
	deadline bool
	err      error
}

func (f *fakeSweeper) SweepOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.grace = olderThan
	_, f.deadline = ctx.Deadline()
	return 3, f.err
}

func TestOrphanSweepJob_Run(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := NewOrphanSweepJob(sweeper, 24*time.Hour, time.Minute, zap.NewNop())

	job.Run()

	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 24*time.Hour, sweeper.grace)
	assert.True(t, sweeper.deadline, "sweep should run under a timeout")
}

func TestOrphanSweepJob_RunSurvivesFailure(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("bucket down")}
	job := NewOrphanSweepJob(sweeper, time.Hour, time.Minute, zap.NewNop())

	assert.NotPanics(t, job.Run)
	assert.Equal(t, 1, sweeper.calls)
}

func TestScheduler_AddAndRemoveJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	job := NewOrphanSweepJob(&fakeSweeper{}, time.Hour, time.Minute, zap.NewNop())

	require.NoError(t, s.AddJob(OrphanSweepJobName, "0 30 3 * * *", job))
	assert.Equal(t, []string{OrphanSweepJobName}, s.JobNames())

	err := s.AddJob(OrphanSweepJobName, "@hourly", job)
	assert.Error(t, err, "duplicate names are rejected")

	require.NoError(t, s.RemoveJob(OrphanSweepJobName))
	assert.Empty(t, s.JobNames())
	assert.Error(t, s.RemoveJob(OrphanSweepJobName))
}

func TestScheduler_RejectsBadExpression(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.AddJob("bad", "not a cron expression", NewOrphanSweepJob(&fakeSweeper{}, 0, time.Second, zap.NewNop()))
	assert.Error(t, err)
	assert.Empty(t, s.JobNames())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	sweeper := &fakeSweeper{}
	require.NoError(t, s.AddJob(OrphanSweepJobName, "@every 1s", NewOrphanSweepJob(sweeper, 0, time.Second, zap.NewNop())))

	s.Start()
	assert.False(t, s.NextRun(OrphanSweepJobName).IsZero())

	assert.Eventually(t, func() bool {
		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		return sweeper.calls > 0
	}, 3*time.Second, 50*time.Millisecond)

	<-s.Stop().Done()
}
