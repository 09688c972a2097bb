package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/logger"
	"github.com/pwlgk/s13-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER SCANNER
// ══════════════════════════════════════════════════════════════════════════════

// DefaultReminderIntervals are the minutes-before-start marks a reminder is
// sent at. The scanner runs every minute and matches each mark exactly once.
var DefaultReminderIntervals = []int{30, 15, 10, 5}

// DefaultLessonStartTimes maps a period number to its campus start time.
var DefaultLessonStartTimes = map[int]string{
	1: "08:00",
	2: "09:45",
	3: "11:30",
	4: "13:45",
	5: "15:30",
	6: "17:15",
	7: "19:00",
}

// ReminderScanner finds lessons starting soon and pushes reminder tasks to
// the outbound queue. It shares the LessonInfo snapshot shape with the
// change path, so the dispatcher applies the same subgroup filtering to both.
type ReminderScanner struct {
	lessons    schedule.LessonRepository
	publisher  schedule.ReminderPublisher
	slotStarts map[int]string
	intervals  []int
	now        func() time.Time
	log        *logger.Logger
}

// NewReminderScanner creates a ReminderScanner. Nil slotStarts or intervals
// fall back to the defaults.
func NewReminderScanner(
	lessons schedule.LessonRepository,
	publisher schedule.ReminderPublisher,
	slotStarts map[int]string,
	intervals []int,
	log *logger.Logger,
) *ReminderScanner {
	if slotStarts == nil {
		slotStarts = DefaultLessonStartTimes
	}
	if intervals == nil {
		intervals = DefaultReminderIntervals
	}
	if log == nil {
		log = logger.Default()
	}
	return &ReminderScanner{
		lessons:    lessons,
		publisher:  publisher,
		slotStarts: slotStarts,
		intervals:  intervals,
		now:        timeutil.Now,
		log:        log.With(logger.Component("reminder_scanner")),
	}
}

// Run checks every reminder mark against the configured period start times
// and enqueues reminders for lessons in a matching slot today.
func (s *ReminderScanner) Run(ctx context.Context) error {
	now := s.now()

	for _, minutes := range s.intervals {
		target := now.Add(time.Duration(minutes) * time.Minute)

		slot := s.matchSlot(target)
		if slot == 0 {
			continue
		}

		upcoming, err := s.lessons.StartingAt(ctx, timeutil.DateOnly(now), slot)
		if err != nil {
			return fmt.Errorf("load lessons for slot %d: %w", slot, err)
		}
		if len(upcoming) == 0 {
			continue
		}

		reminders := make([]schedule.LessonReminder, 0, len(upcoming))
		for _, l := range upcoming {
			reminders = append(reminders, schedule.LessonReminder{
				Type:          schedule.ReminderType,
				SourceID:      l.SourceID,
				GroupID:       l.GroupID,
				SubjectName:   l.SubjectName,
				TimeSlot:      l.TimeSlot,
				RoomName:      l.RoomName,
				MinutesBefore: minutes,
			})
		}

		if err := s.publisher.PushReminders(ctx, reminders); err != nil {
			return fmt.Errorf("push reminders: %w", err)
		}

		s.log.Info("reminders queued",
			logger.Int("slot", slot),
			logger.Int("minutes_before", minutes),
			logger.Int("lessons", len(reminders)),
		)
	}

	return nil
}

// matchSlot returns the period whose start time equals the target's
// hour and minute, or 0 when no period starts at that moment.
func (s *ReminderScanner) matchSlot(target time.Time) int {
	for slot, start := range s.slotStarts {
		var h, m int
		if _, err := fmt.Sscanf(start, "%d:%d", &h, &m); err != nil {
			continue
		}
		if target.Hour() == h && target.Minute() == m {
			return slot
		}
	}
	return 0
}
