package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC ORCHESTRATOR
// ══════════════════════════════════════════════════════════════════════════════

// OrchestratorConfig configures the per-group sync loop.
type OrchestratorConfig struct {
	// InterGroupDelay is slept between groups to respect upstream rate limits.
	InterGroupDelay time.Duration

	// Now supplies the current time; overridable in tests.
	Now func() time.Time
}

// DefaultOrchestratorConfig returns sensible defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		InterGroupDelay: 500 * time.Millisecond,
		Now:             time.Now,
	}
}

// SyncStats summarizes one orchestrator run.
type SyncStats struct {
	RunID             string
	StartedAt         time.Time
	Duration          time.Duration
	GroupsTotal       int
	GroupsSynced      int
	GroupsSkipped     int
	GroupsFailed      int
	ChangesPublished  int
	ChangesSuppressed int
	RowsUpserted      int
	RowsDeleted       int
}

// Orchestrator drives reconciliation across a set of groups with per-group
// failure isolation and commit discipline.
//
// For each group, strictly in sequence: fetch, reconcile against a stored
// snapshot read at the start of the pass, drop rows with unresolved
// tutor/room references, upsert and delete in one transaction, then publish
// the change events. Events are published after the commit, so a change that
// fails to persist is never announced.
type Orchestrator struct {
	fetcher    Fetcher
	lessons    schedule.LessonRepository
	dicts      schedule.DictionaryRepository
	publisher  schedule.ChangePublisher
	reconciler *Reconciler
	cfg        OrchestratorConfig
	log        *logger.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	fetcher Fetcher,
	lessons schedule.LessonRepository,
	dicts schedule.DictionaryRepository,
	publisher schedule.ChangePublisher,
	reconciler *Reconciler,
	cfg OrchestratorConfig,
	log *logger.Logger,
) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{
		fetcher:    fetcher,
		lessons:    lessons,
		dicts:      dicts,
		publisher:  publisher,
		reconciler: reconciler,
		cfg:        cfg,
		log:        log.With(logger.Component("orchestrator")),
	}
}

// SyncGroups synchronizes the schedule for every group in groupIDs.
//
// A failure in one group is logged and does not abort the remaining groups.
// The returned error is non-nil only when the run could not start at all
// (dictionary id sets unavailable) or was cancelled.
func (o *Orchestrator) SyncGroups(ctx context.Context, groupIDs []int) (*SyncStats, error) {
	stats := &SyncStats{
		RunID:       uuid.NewString(),
		StartedAt:   o.cfg.Now(),
		GroupsTotal: len(groupIDs),
	}
	defer func() { stats.Duration = time.Since(stats.StartedAt) }()

	if len(groupIDs) == 0 {
		return stats, nil
	}

	log := o.log.With(logger.String("run_id", stats.RunID))
	log.Info("starting schedule sync", logger.Int("groups", len(groupIDs)))

	// One consistent view of the dictionaries for the whole run; lessons
	// referencing ids outside these sets cannot be written this cycle.
	tutorIDs, err := o.dicts.TutorIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("load tutor ids: %w", err)
	}
	roomIDs, err := o.dicts.RoomIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("load room ids: %w", err)
	}

	for i, groupID := range groupIDs {
		// Cancellation is checked between groups only, so a shutdown
		// never leaves a group half-committed.
		if err := ctx.Err(); err != nil {
			log.Info("sync cancelled",
				logger.Int("processed", i),
				logger.Int("remaining", len(groupIDs)-i),
			)
			return stats, err
		}
		if i > 0 && o.cfg.InterGroupDelay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(o.cfg.InterGroupDelay):
			}
		}

		if err := o.syncGroup(ctx, groupID, tutorIDs, roomIDs, stats, log); err != nil {
			stats.GroupsFailed++
			log.Error("group sync failed",
				logger.Int("group_id", groupID),
				logger.Err(err),
			)
		}
	}

	log.Info("schedule sync finished",
		logger.Int("synced", stats.GroupsSynced),
		logger.Int("skipped", stats.GroupsSkipped),
		logger.Int("failed", stats.GroupsFailed),
		logger.Int("changes", stats.ChangesPublished),
		logger.Duration("took", time.Since(stats.StartedAt)),
	)
	return stats, nil
}

// syncGroup runs the fetch → reconcile → persist → publish sequence for one
// group. Any error leaves that group's stored state untouched.
func (o *Orchestrator) syncGroup(
	ctx context.Context,
	groupID int,
	tutorIDs, roomIDs map[int]struct{},
	stats *SyncStats,
	log *logger.Logger,
) error {
	days, err := o.fetcher.GroupSchedule(ctx, groupID)
	if err != nil {
		// Upstream unavailable for this group: skip the cycle, the next
		// scheduled run converges. Never interpreted as "all cancelled".
		stats.GroupsSkipped++
		log.Warn("feed unavailable, skipping group",
			logger.Int("group_id", groupID),
			logger.Err(err),
		)
		return nil
	}

	stored, err := o.lessons.ForGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load stored lessons: %w", err)
	}

	res := o.reconciler.Reconcile(groupID, stored, days, o.cfg.Now())

	upserts, resolvable := filterResolvable(res.Upserts, tutorIDs, roomIDs)
	changes, suppressed := suppressUnresolved(res.Changes, resolvable)
	stats.ChangesSuppressed += suppressed
	if suppressed > 0 {
		log.Warn("suppressed changes with unresolved references",
			logger.Int("group_id", groupID),
			logger.Int("suppressed", suppressed),
		)
	}

	if err := o.lessons.ReplaceForGroup(ctx, groupID, upserts, res.DeleteIDs); err != nil {
		return fmt.Errorf("persist reconciliation: %w", err)
	}

	if len(changes) > 0 {
		if err := o.publisher.PushChanges(ctx, changes); err != nil {
			// The state is committed; the notification is lost, not wrong.
			log.Error("failed to publish changes",
				logger.Int("group_id", groupID),
				logger.Int("changes", len(changes)),
				logger.Err(err),
			)
		} else {
			stats.ChangesPublished += len(changes)
		}
	}

	stats.GroupsSynced++
	stats.RowsUpserted += len(upserts)
	stats.RowsDeleted += len(res.DeleteIDs)

	log.Debug("group synced",
		logger.Int("group_id", groupID),
		logger.Int("upserted", len(upserts)),
		logger.Int("deleted", len(res.DeleteIDs)),
		logger.Int("changes", len(changes)),
		logger.Int("malformed", res.SkippedMalformed),
	)
	return nil
}

// filterResolvable drops rows whose tutor or room is not yet in the
// dictionaries. The row reappears in a later cycle once dictionary sync
// catches up. Returns the kept rows and the set of their source ids.
func filterResolvable(upserts []schedule.Lesson, tutorIDs, roomIDs map[int]struct{}) ([]schedule.Lesson, map[int64]struct{}) {
	kept := upserts[:0]
	ids := make(map[int64]struct{}, len(upserts))
	for _, l := range upserts {
		if _, ok := tutorIDs[l.TutorID]; !ok {
			continue
		}
		if _, ok := roomIDs[l.RoomID]; !ok {
			continue
		}
		kept = append(kept, l)
		ids[l.SourceID] = struct{}{}
	}
	return kept, ids
}

// suppressUnresolved removes NEW and UPDATED events whose row could not be
// written this cycle. Announcing a change that is not persisted would show
// users a schedule the bot cannot back with data; the event fires on the
// cycle the row finally lands. CANCELLED events always pass through.
func suppressUnresolved(changes []schedule.ChangeEvent, writable map[int64]struct{}) ([]schedule.ChangeEvent, int) {
	kept := changes[:0]
	suppressed := 0
	for _, c := range changes {
		if c.ChangeType != schedule.ChangeCancelled {
			if _, ok := writable[c.LessonAfter.SourceID]; !ok {
				suppressed++
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept, suppressed
}
