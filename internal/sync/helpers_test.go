package sync

import (
	"context"
	"time"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeFetcher struct {
	groups    []schedule.Group
	groupsErr error
	tutors    []schedule.Tutor
	tutorsErr error
	rooms     []schedule.Room
	roomsErr  error

	schedules    map[int][]schedule.FetchedDay
	scheduleErrs map[int]error
	fetchedIDs   []int

	// onFetch runs before each GroupSchedule call; used to cancel contexts
	// mid-run.
	onFetch func(groupID int)
}

func (f *fakeFetcher) Groups(ctx context.Context) ([]schedule.Group, error) {
	return f.groups, f.groupsErr
}

func (f *fakeFetcher) Tutors(ctx context.Context) ([]schedule.Tutor, error) {
	return f.tutors, f.tutorsErr
}

func (f *fakeFetcher) Rooms(ctx context.Context) ([]schedule.Room, error) {
	return f.rooms, f.roomsErr
}

func (f *fakeFetcher) GroupSchedule(ctx context.Context, groupID int) ([]schedule.FetchedDay, error) {
	if f.onFetch != nil {
		f.onFetch(groupID)
	}
	f.fetchedIDs = append(f.fetchedIDs, groupID)
	if err := f.scheduleErrs[groupID]; err != nil {
		return nil, err
	}
	return f.schedules[groupID], nil
}

type fakeDictRepo struct {
	upserted    []upsertAllCall
	upsertErr   error
	tutorIDs    map[int]struct{}
	tutorIDsErr error
	roomIDs     map[int]struct{}
	roomIDsErr  error
	allGroups   []int
}

type upsertAllCall struct {
	groups []schedule.Group
	tutors []schedule.Tutor
	rooms  []schedule.Room
}

func (f *fakeDictRepo) UpsertAll(ctx context.Context, groups []schedule.Group, tutors []schedule.Tutor, rooms []schedule.Room) (schedule.DictionaryCounts, error) {
	if f.upsertErr != nil {
		return schedule.DictionaryCounts{}, f.upsertErr
	}
	f.upserted = append(f.upserted, upsertAllCall{groups: groups, tutors: tutors, rooms: rooms})
	return schedule.DictionaryCounts{Groups: len(groups), Tutors: len(tutors), Rooms: len(rooms)}, nil
}

func (f *fakeDictRepo) TutorIDs(ctx context.Context) (map[int]struct{}, error) {
	if f.tutorIDsErr != nil {
		return nil, f.tutorIDsErr
	}
	return f.tutorIDs, nil
}

func (f *fakeDictRepo) RoomIDs(ctx context.Context) (map[int]struct{}, error) {
	if f.roomIDsErr != nil {
		return nil, f.roomIDsErr
	}
	return f.roomIDs, nil
}

func (f *fakeDictRepo) AllGroupIDs(ctx context.Context) ([]int, error) {
	return f.allGroups, nil
}

type replaceCall struct {
	groupID   int
	upserts   []schedule.Lesson
	deleteIDs []int64
}

type fakeLessonRepo struct {
	stored      map[int][]schedule.Lesson
	storedErr   error
	replaces    []replaceCall
	replaceErrs map[int]error

	sweepCutoff  time.Time
	sweepRemoved int64
	sweepErr     error

	upcoming     map[int][]schedule.UpcomingLesson
	upcomingErr  error
	queriedSlots []int
}

func (f *fakeLessonRepo) ForGroup(ctx context.Context, groupID int) ([]schedule.Lesson, error) {
	if f.storedErr != nil {
		return nil, f.storedErr
	}
	return f.stored[groupID], nil
}

func (f *fakeLessonRepo) ReplaceForGroup(ctx context.Context, groupID int, upserts []schedule.Lesson, deleteIDs []int64) error {
	if err := f.replaceErrs[groupID]; err != nil {
		return err
	}
	f.replaces = append(f.replaces, replaceCall{groupID: groupID, upserts: upserts, deleteIDs: deleteIDs})
	return nil
}

func (f *fakeLessonRepo) DeleteNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error) {
	f.sweepCutoff = cutoff
	return f.sweepRemoved, f.sweepErr
}

func (f *fakeLessonRepo) StartingAt(ctx context.Context, day time.Time, timeSlot int) ([]schedule.UpcomingLesson, error) {
	if f.upcomingErr != nil {
		return nil, f.upcomingErr
	}
	f.queriedSlots = append(f.queriedSlots, timeSlot)
	return f.upcoming[timeSlot], nil
}

type fakeQueue struct {
	changes   [][]schedule.ChangeEvent
	pushErr   error
	reminders [][]schedule.LessonReminder
}

func (f *fakeQueue) PushChanges(ctx context.Context, changes []schedule.ChangeEvent) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.changes = append(f.changes, changes)
	return nil
}

func (f *fakeQueue) PushReminders(ctx context.Context, reminders []schedule.LessonReminder) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.reminders = append(f.reminders, reminders)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUILDERS
// ══════════════════════════════════════════════════════════════════════════════

// rawLesson builds a feed occurrence the way the JSON decoder would: numbers
// arrive as float64.
func rawLesson(sourceID int64, day string, slot int, subject string) schedule.RawLesson {
	return schedule.RawLesson{
		"id":         float64(sourceID),
		"lesson_id":  float64(100 + sourceID),
		"day":        day,
		"time":       float64(slot),
		"lesson":     subject,
		"teacher_id": float64(7),
		"auditory_id": float64(9),
	}
}

func mustDate(day string) time.Time {
	t, err := time.Parse(schedule.LessonDateLayout, day)
	if err != nil {
		panic(err)
	}
	return t
}

// storedLesson builds a stored row matching rawLesson(sourceID, day, slot,
// subject), fingerprint included.
func storedLesson(sourceID int64, day string, slot int, subject string, groupID int) schedule.Lesson {
	return schedule.Lesson{
		SourceID:    sourceID,
		CellID:      int(100 + sourceID),
		Date:        mustDate(day),
		TimeSlot:    slot,
		SubjectName: subject,
		ContentHash: Fingerprint(rawLesson(sourceID, day, slot, subject)),
		GroupID:     groupID,
		TutorID:     7,
		RoomID:      9,
	}
}
