package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// LessonRepository is the PostgreSQL implementation of
// schedule.LessonRepository.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

const lessonColumns = `
	source_id, schedule_cell_id, date, time_slot,
	COALESCE(subgroup_name, ''), subject_name, lesson_type,
	content_hash, last_seen_at, group_id, tutor_id, room_id`

// ForGroup returns every stored lesson of one group, past dates included.
// Reconciliation needs the full set: past rows must keep their last_seen_at
// refreshed while the feed still publishes them.
func (r *LessonRepository) ForGroup(ctx context.Context, groupID int) ([]schedule.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE group_id = $1", lessonColumns)

	rows, err := r.conn.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query lessons for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var lessons []schedule.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// StartingAt returns lessons on the given day in the given time slot, with
// room names resolved for reminder messages.
func (r *LessonRepository) StartingAt(ctx context.Context, day time.Time, timeSlot int) ([]schedule.UpcomingLesson, error) {
	query := `
		SELECT
			l.source_id, l.schedule_cell_id, l.date, l.time_slot,
			COALESCE(l.subgroup_name, ''), l.subject_name, l.lesson_type,
			l.content_hash, l.last_seen_at, l.group_id, l.tutor_id, l.room_id,
			COALESCE(r.name, '')
		FROM lessons l
		LEFT JOIN rooms r ON r.id = l.room_id
		WHERE l.date = $1 AND l.time_slot = $2`

	rows, err := r.conn.Query(ctx, query, day, timeSlot)
	if err != nil {
		return nil, fmt.Errorf("query lessons at slot %d: %w", timeSlot, err)
	}
	defer rows.Close()

	var upcoming []schedule.UpcomingLesson
	for rows.Next() {
		var u schedule.UpcomingLesson
		if err := rows.Scan(
			&u.SourceID, &u.CellID, &u.Date, &u.TimeSlot,
			&u.SubgroupName, &u.SubjectName, &u.LessonType,
			&u.ContentHash, &u.LastSeenAt, &u.GroupID, &u.TutorID, &u.RoomID,
			&u.RoomName,
		); err != nil {
			return nil, fmt.Errorf("scan upcoming lesson: %w", err)
		}
		upcoming = append(upcoming, u)
	}
	return upcoming, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITES
// ══════════════════════════════════════════════════════════════════════════════

const upsertLessonQuery = `
	INSERT INTO lessons (
		source_id, schedule_cell_id, date, time_slot,
		subgroup_name, subject_name, lesson_type,
		content_hash, last_seen_at, group_id, tutor_id, room_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (source_id) DO UPDATE SET
		schedule_cell_id = EXCLUDED.schedule_cell_id,
		date = EXCLUDED.date,
		time_slot = EXCLUDED.time_slot,
		subgroup_name = EXCLUDED.subgroup_name,
		subject_name = EXCLUDED.subject_name,
		lesson_type = EXCLUDED.lesson_type,
		content_hash = EXCLUDED.content_hash,
		last_seen_at = EXCLUDED.last_seen_at,
		group_id = EXCLUDED.group_id,
		tutor_id = EXCLUDED.tutor_id,
		room_id = EXCLUDED.room_id`

// ReplaceForGroup applies one reconciliation outcome in a single transaction:
// upserts first, then deletes. A source id present in both sets ends up
// deleted, which matches the cancellation semantics of reconciliation.
func (r *LessonRepository) ReplaceForGroup(ctx context.Context, groupID int, upserts []schedule.Lesson, deleteIDs []int64) error {
	if len(upserts) == 0 && len(deleteIDs) == 0 {
		return nil
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if len(upserts) > 0 {
			batch := &pgx.Batch{}
			for _, l := range upserts {
				batch.Queue(upsertLessonQuery,
					l.SourceID, l.CellID, l.Date, l.TimeSlot,
					textOrNull(l.SubgroupName), l.SubjectName, l.LessonType,
					l.ContentHash, l.LastSeenAt, l.GroupID, l.TutorID, l.RoomID,
				)
			}

			results := tx.SendBatch(ctx, batch)
			for i := 0; i < batch.Len(); i++ {
				if _, err := results.Exec(); err != nil {
					_ = results.Close()
					return fmt.Errorf("upsert lesson %d/%d for group %d: %w", i+1, batch.Len(), groupID, err)
				}
			}
			if err := results.Close(); err != nil {
				return fmt.Errorf("close lesson batch for group %d: %w", groupID, err)
			}
		}

		if len(deleteIDs) > 0 {
			if _, err := tx.Exec(ctx,
				"DELETE FROM lessons WHERE group_id = $1 AND source_id = ANY($2)",
				groupID, deleteIDs,
			); err != nil {
				return fmt.Errorf("delete cancelled lessons for group %d: %w", groupID, err)
			}
		}

		return nil
	})
}

// DeleteNotSeenSince removes rows whose last_seen_at is older than the
// cutoff, regardless of lesson date.
func (r *LessonRepository) DeleteNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn.Exec(ctx, "DELETE FROM lessons WHERE last_seen_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale lessons: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func scanLesson(rows pgx.Rows) (schedule.Lesson, error) {
	var l schedule.Lesson
	if err := rows.Scan(
		&l.SourceID, &l.CellID, &l.Date, &l.TimeSlot,
		&l.SubgroupName, &l.SubjectName, &l.LessonType,
		&l.ContentHash, &l.LastSeenAt, &l.GroupID, &l.TutorID, &l.RoomID,
	); err != nil {
		return schedule.Lesson{}, fmt.Errorf("scan lesson: %w", err)
	}
	return l, nil
}
