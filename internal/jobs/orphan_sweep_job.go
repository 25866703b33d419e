package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OrphanSweepJobName is the name of the orphaned-object sweep job
const OrphanSweepJobName = "orphan_sweep"

// OrphanSweeper removes bucket objects no tool references
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, olderThan time.Duration) (int, error)
}

// OrphanSweepJob cleans up files left behind by failed deletes and by
// uploads whose form was never saved.
type OrphanSweepJob struct {
	sweeper OrphanSweeper
	grace   time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrphanSweepJob creates the sweep job. Objects younger than grace are
// kept so that files uploaded for a form still being submitted survive.
func NewOrphanSweepJob(sweeper OrphanSweeper, grace, timeout time.Duration, logger *zap.Logger) *OrphanSweepJob {
	return &OrphanSweepJob{
		sweeper: sweeper,
		grace:   grace,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes one sweep. It implements cron.Job.
func (j *OrphanSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.sweeper.SweepOrphans(ctx, j.grace)
	if err != nil {
		j.logger.Error("orphan sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("orphan sweep completed",
		zap.Int("removed", removed),
		zap.Duration("grace", j.grace),
		zap.Duration("duration", time.Since(start)))
}
