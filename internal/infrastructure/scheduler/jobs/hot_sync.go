package jobs

import (
	"context"
	"fmt"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	syncer "github.com/pwlgk/s13-backend/internal/sync"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// HotSyncJob synchronizes schedules for groups that have at least one live
// subscriber. It runs frequently; the cold job covers the rest of the catalog.
type HotSyncJob struct {
	orchestrator *syncer.Orchestrator
	users        schedule.UserRepository
	log          *logger.Logger
}

// NewHotSyncJob creates the hot sync job.
func NewHotSyncJob(orchestrator *syncer.Orchestrator, users schedule.UserRepository, log *logger.Logger) *HotSyncJob {
	if log == nil {
		log = logger.Default()
	}
	return &HotSyncJob{
		orchestrator: orchestrator,
		users:        users,
		log:          log.With(logger.JobName("hot_schedule_sync")),
	}
}

// Name returns the unique job name.
func (j *HotSyncJob) Name() string {
	return "hot_schedule_sync"
}

// Description returns a human-readable description.
func (j *HotSyncJob) Description() string {
	return "Syncs schedules for groups with active subscribers"
}

// Run resolves the hot group set and synchronizes it.
func (j *HotSyncJob) Run(ctx context.Context) error {
	groupIDs, err := j.users.ActiveGroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve hot groups: %w", err)
	}
	if len(groupIDs) == 0 {
		j.log.Info("no hot groups, nothing to sync")
		return nil
	}

	stats, err := j.orchestrator.SyncGroups(ctx, groupIDs)
	if err != nil {
		return fmt.Errorf("hot sync: %w", err)
	}

	j.log.Info("hot sync finished",
		logger.String("run_id", stats.RunID),
		logger.Int("groups_total", stats.GroupsTotal),
		logger.Int("groups_failed", stats.GroupsFailed),
		logger.Int("changes_published", stats.ChangesPublished),
	)
	return nil
}
