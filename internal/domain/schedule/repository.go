package schedule

import (
	"context"
	"time"
)

// DictionaryCounts reports how many reference rows each collection upserted.
type DictionaryCounts struct {
	Groups int
	Tutors int
	Rooms  int
}

// DictionaryRepository persists the reference dictionaries.
type DictionaryRepository interface {
	// UpsertAll upserts the three collections in a single transaction.
	// Nil or empty slices are skipped; a database error rolls back all three.
	UpsertAll(ctx context.Context, groups []Group, tutors []Tutor, rooms []Room) (DictionaryCounts, error)

	// TutorIDs returns the set of known tutor ids.
	TutorIDs(ctx context.Context) (map[int]struct{}, error)

	// RoomIDs returns the set of known room ids.
	RoomIDs(ctx context.Context) (map[int]struct{}, error)

	// AllGroupIDs returns every group id present in the dictionary.
	AllGroupIDs(ctx context.Context) ([]int, error)
}

// LessonRepository persists lesson rows keyed by source id.
type LessonRepository interface {
	// ForGroup returns every stored lesson of one group, past dates included.
	ForGroup(ctx context.Context, groupID int) ([]Lesson, error)

	// ReplaceForGroup applies one reconciliation outcome atomically:
	// upserts first, then deletes, in a single transaction. A source id
	// present in both sets ends up deleted.
	ReplaceForGroup(ctx context.Context, groupID int, upserts []Lesson, deleteIDs []int64) error

	// DeleteNotSeenSince removes rows whose last_seen_at is older than the
	// cutoff, regardless of lesson date. Returns the number of rows removed.
	DeleteNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error)

	// StartingAt returns lessons on the given day in the given time slot,
	// with room names resolved for reminder messages.
	StartingAt(ctx context.Context, day time.Time, timeSlot int) ([]UpcomingLesson, error)
}

// UserRepository is the slice of the users table the sync core needs.
type UserRepository interface {
	// ActiveGroupIDs returns ids of groups that have at least one
	// non-blocked user. These are the "hot" groups.
	ActiveGroupIDs(ctx context.Context) ([]int, error)
}

// ChangePublisher hands change events to the outbound notification queue.
type ChangePublisher interface {
	PushChanges(ctx context.Context, changes []ChangeEvent) error
}

// ReminderPublisher hands reminder tasks to the outbound notification queue.
type ReminderPublisher interface {
	PushReminders(ctx context.Context, reminders []LessonReminder) error
}
