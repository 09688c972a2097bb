package jobs

import (
	"context"
	"fmt"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	syncer "github.com/pwlgk/s13-backend/internal/sync"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// ColdSyncJob synchronizes schedules for groups without subscribers. It keeps
// the stored catalog warm so a user picking a new group sees data immediately,
// and runs once a night to spare the feed.
type ColdSyncJob struct {
	orchestrator *syncer.Orchestrator
	dicts        schedule.DictionaryRepository
	users        schedule.UserRepository
	log          *logger.Logger
}

// NewColdSyncJob creates the cold sync job.
func NewColdSyncJob(
	orchestrator *syncer.Orchestrator,
	dicts schedule.DictionaryRepository,
	users schedule.UserRepository,
	log *logger.Logger,
) *ColdSyncJob {
	if log == nil {
		log = logger.Default()
	}
	return &ColdSyncJob{
		orchestrator: orchestrator,
		dicts:        dicts,
		users:        users,
		log:          log.With(logger.JobName("cold_schedule_sync")),
	}
}

// Name returns the unique job name.
func (j *ColdSyncJob) Name() string {
	return "cold_schedule_sync"
}

// Description returns a human-readable description.
func (j *ColdSyncJob) Description() string {
	return "Syncs schedules for groups without active subscribers"
}

// Run computes the cold set (all known groups minus the hot ones) and
// synchronizes it.
func (j *ColdSyncJob) Run(ctx context.Context) error {
	all, err := j.dicts.AllGroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve all groups: %w", err)
	}

	hot, err := j.users.ActiveGroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve hot groups: %w", err)
	}

	hotSet := make(map[int]struct{}, len(hot))
	for _, id := range hot {
		hotSet[id] = struct{}{}
	}

	cold := make([]int, 0, len(all))
	for _, id := range all {
		if _, isHot := hotSet[id]; !isHot {
			cold = append(cold, id)
		}
	}

	if len(cold) == 0 {
		j.log.Info("no cold groups, nothing to sync")
		return nil
	}

	stats, err := j.orchestrator.SyncGroups(ctx, cold)
	if err != nil {
		return fmt.Errorf("cold sync: %w", err)
	}

	j.log.Info("cold sync finished",
		logger.String("run_id", stats.RunID),
		logger.Int("groups_total", stats.GroupsTotal),
		logger.Int("groups_failed", stats.GroupsFailed),
		logger.Int("rows_upserted", stats.RowsUpserted),
	)
	return nil
}
