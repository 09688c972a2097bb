package jobs

import (
	"context"

	syncer "github.com/pwlgk/s13-backend/internal/sync"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// CleanupJob removes lesson rows the feed stopped publishing.
type CleanupJob struct {
	sweeper *syncer.RetentionSweeper
	log     *logger.Logger
}

// NewCleanupJob creates the retention cleanup job.
func NewCleanupJob(sweeper *syncer.RetentionSweeper, log *logger.Logger) *CleanupJob {
	if log == nil {
		log = logger.Default()
	}
	return &CleanupJob{
		sweeper: sweeper,
		log:     log.With(logger.JobName("lesson_cleanup")),
	}
}

// Name returns the unique job name.
func (j *CleanupJob) Name() string {
	return "lesson_cleanup"
}

// Description returns a human-readable description.
func (j *CleanupJob) Description() string {
	return "Deletes lessons not confirmed by the feed within the retention window"
}

// Run executes one retention sweep.
func (j *CleanupJob) Run(ctx context.Context) error {
	deleted, err := j.sweeper.Run(ctx)
	if err != nil {
		return err
	}
	j.log.Info("cleanup finished", logger.Int64("rows_deleted", deleted))
	return nil
}
