package sync

import (
	"time"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/logger"
	"github.com/pwlgk/s13-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILER
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileResult is the full outcome of one per-group reconciliation pass.
type ReconcileResult struct {
	// Changes are the discovered NEW/UPDATED/CANCELLED events, before any
	// foreign-key filtering by the orchestrator. Order is not significant;
	// the notification consumer regroups by date and time slot.
	Changes []schedule.ChangeEvent

	// Upserts are the rows to write. Every fetched occurrence that carries
	// the complete set of required fields lands here, past dates included,
	// so that last_seen_at stays fresh for everything the feed confirms.
	Upserts []schedule.Lesson

	// DeleteIDs are source ids of cancelled future lessons.
	DeleteIDs []int64

	// SkippedMalformed counts occurrences dropped for a missing id or an
	// unparseable date. A data-quality signal, never a failure.
	SkippedMalformed int
}

// Reconciler computes change sets for a single group by comparing freshly
// fetched lessons against stored state by source id and content fingerprint.
//
// Change detection is future-only: occurrences dated strictly before "today"
// are history and are never reported as new, updated or cancelled.
type Reconciler struct {
	log *logger.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Default()
	}
	return &Reconciler{log: log.With(logger.Component("reconciler"))}
}

// Reconcile compares the fetched day listing against the stored lessons of
// one group. now provides "today" and the last_seen_at stamp for upserts.
func (r *Reconciler) Reconcile(groupID int, stored []schedule.Lesson, days []schedule.FetchedDay, now time.Time) ReconcileResult {
	var res ReconcileResult

	today := timeutil.DateOnly(now)

	storedByID := make(map[int64]*schedule.Lesson, len(stored))
	for i := range stored {
		storedByID[stored[i].SourceID] = &stored[i]
	}

	// Source ids confirmed by the fetch with a current or future date.
	// Stored future lessons missing from this set are cancelled.
	seen := make(map[int64]struct{})

	for _, day := range days {
		for _, raw := range day.Lessons {
			sourceID := raw.SourceID()
			if sourceID == 0 {
				res.SkippedMalformed++
				continue
			}

			date, ok := raw.Date()
			if !ok {
				r.log.Warn("skipping lesson with malformed date",
					logger.Int("group_id", groupID),
					logger.Int64("source_id", sourceID),
					logger.String("day", raw.DayString()),
				)
				res.SkippedMalformed++
				continue
			}

			// The row is written even for past dates; only change
			// detection below is future-only.
			if lesson, ok := buildLesson(raw, groupID, date, now); ok {
				res.Upserts = append(res.Upserts, lesson)
			}

			if date.Before(today) {
				continue
			}

			seen[sourceID] = struct{}{}
			hash := Fingerprint(raw)
			after := raw.Snapshot()

			prev, exists := storedByID[sourceID]
			switch {
			case !exists:
				res.Changes = append(res.Changes, schedule.ChangeEvent{
					ChangeType:  schedule.ChangeNew,
					GroupID:     groupID,
					LessonAfter: &after,
				})
			case prev.ContentHash != hash:
				before := prev.Snapshot()
				res.Changes = append(res.Changes, schedule.ChangeEvent{
					ChangeType:   schedule.ChangeUpdated,
					GroupID:      groupID,
					LessonBefore: &before,
					LessonAfter:  &after,
				})
			}
		}
	}

	for sourceID, prev := range storedByID {
		if _, ok := seen[sourceID]; ok {
			continue
		}
		if prev.Date.Before(today) {
			// Past lessons naturally fall out of the feed; not a cancellation.
			continue
		}
		before := prev.Snapshot()
		res.Changes = append(res.Changes, schedule.ChangeEvent{
			ChangeType:   schedule.ChangeCancelled,
			GroupID:      groupID,
			LessonBefore: &before,
		})
		res.DeleteIDs = append(res.DeleteIDs, sourceID)
	}

	return res
}

// buildLesson converts a raw occurrence into a storable row. It returns
// false when a required field is missing; such occurrences may still produce
// a change event, but nothing can be written for them this cycle.
func buildLesson(raw schedule.RawLesson, groupID int, date time.Time, now time.Time) (schedule.Lesson, bool) {
	tutorID := raw.TutorID()
	roomID := raw.RoomID()
	cellID := raw.CellID()
	if tutorID == 0 || roomID == 0 || cellID == 0 {
		return schedule.Lesson{}, false
	}

	return schedule.Lesson{
		SourceID:     raw.SourceID(),
		CellID:       cellID,
		Date:         date,
		TimeSlot:     raw.TimeSlot(),
		SubgroupName: raw.SubgroupName(),
		SubjectName:  raw.SubjectName(),
		LessonType:   raw.LessonType(),
		ContentHash:  Fingerprint(raw),
		LastSeenAt:   now,
		GroupID:      groupID,
		TutorID:      tutorID,
		RoomID:       roomID,
	}, true
}
