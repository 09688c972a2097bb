package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/timeutil"
)

func newTestScanner(lessons *fakeLessonRepo, queue *fakeQueue, now time.Time) *ReminderScanner {
	scanner := NewReminderScanner(lessons, queue, nil, nil, nil)
	scanner.now = func() time.Time { return now }
	return scanner
}

func upcoming(sourceID int64, slot int, subject, room string) schedule.UpcomingLesson {
	return schedule.UpcomingLesson{
		Lesson: schedule.Lesson{
			SourceID:    sourceID,
			TimeSlot:    slot,
			SubjectName: subject,
			GroupID:     10,
		},
		RoomName: room,
	}
}

func TestReminderScan_ThirtyMinuteMark(t *testing.T) {
	// 07:30 + 30m = 08:00, the start of period 1.
	now := time.Date(2025, 9, 2, 7, 30, 0, 0, timeutil.OmskTZ)

	lessons := &fakeLessonRepo{
		upcoming: map[int][]schedule.UpcomingLesson{
			1: {upcoming(555, 1, "Algebra", "404")},
		},
	}
	queue := &fakeQueue{}

	err := newTestScanner(lessons, queue, now).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1}, lessons.queriedSlots)

	require.Len(t, queue.reminders, 1)
	require.Len(t, queue.reminders[0], 1)
	reminder := queue.reminders[0][0]
	assert.Equal(t, schedule.ReminderType, reminder.Type)
	assert.Equal(t, int64(555), reminder.SourceID)
	assert.Equal(t, 10, reminder.GroupID)
	assert.Equal(t, "Algebra", reminder.SubjectName)
	assert.Equal(t, "404", reminder.RoomName)
	assert.Equal(t, 30, reminder.MinutesBefore)
}

func TestReminderScan_FiveMinuteMark(t *testing.T) {
	// 09:40 + 5m = 09:45, the start of period 2. The other marks land on
	// 10:10, 09:55 and 09:50, none of which start a period.
	now := time.Date(2025, 9, 2, 9, 40, 0, 0, timeutil.OmskTZ)

	lessons := &fakeLessonRepo{
		upcoming: map[int][]schedule.UpcomingLesson{
			2: {upcoming(556, 2, "Geometry", "101")},
		},
	}
	queue := &fakeQueue{}

	err := newTestScanner(lessons, queue, now).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{2}, lessons.queriedSlots)
	require.Len(t, queue.reminders, 1)
	assert.Equal(t, 5, queue.reminders[0][0].MinutesBefore)
}

func TestReminderScan_NoMatchingSlotIsQuiet(t *testing.T) {
	// 12:00: no mark lands on a period start.
	now := time.Date(2025, 9, 2, 12, 0, 0, 0, timeutil.OmskTZ)

	lessons := &fakeLessonRepo{}
	queue := &fakeQueue{}

	err := newTestScanner(lessons, queue, now).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, lessons.queriedSlots)
	assert.Empty(t, queue.reminders)
}

func TestReminderScan_EmptySlotPushesNothing(t *testing.T) {
	now := time.Date(2025, 9, 2, 7, 30, 0, 0, timeutil.OmskTZ)

	lessons := &fakeLessonRepo{} // no lessons in any slot
	queue := &fakeQueue{}

	err := newTestScanner(lessons, queue, now).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1}, lessons.queriedSlots)
	assert.Empty(t, queue.reminders)
}

func TestMatchSlot(t *testing.T) {
	scanner := NewReminderScanner(&fakeLessonRepo{}, &fakeQueue{}, nil, nil, nil)

	cases := []struct {
		hour, minute int
		want         int
	}{
		{8, 0, 1},
		{9, 45, 2},
		{19, 0, 7},
		{8, 1, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		target := time.Date(2025, 9, 2, tc.hour, tc.minute, 0, 0, timeutil.OmskTZ)
		assert.Equal(t, tc.want, scanner.matchSlot(target), "%02d:%02d", tc.hour, tc.minute)
	}
}
