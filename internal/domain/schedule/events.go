package schedule

// ChangeType classifies a schedule change discovered by reconciliation.
type ChangeType string

const (
	// ChangeNew means a source id appeared that was not stored before.
	ChangeNew ChangeType = "NEW"

	// ChangeUpdated means the stored fingerprint differs from the fetched one.
	ChangeUpdated ChangeType = "UPDATED"

	// ChangeCancelled means a stored future lesson stopped appearing in the feed.
	ChangeCancelled ChangeType = "CANCELLED"
)

// ChangeEvent is one schedule change for one group. Events are not persisted;
// they are handed to the outbound queue for the notification dispatcher.
//
// LessonBefore is set for UPDATED and CANCELLED, LessonAfter for NEW and
// UPDATED.
type ChangeEvent struct {
	ChangeType   ChangeType  `json:"change_type"`
	GroupID      int         `json:"group_id"`
	LessonBefore *LessonInfo `json:"lesson_before,omitempty"`
	LessonAfter  *LessonInfo `json:"lesson_after,omitempty"`
}

// Subject returns the most recent known lesson snapshot of the event.
func (e ChangeEvent) Subject() *LessonInfo {
	if e.LessonAfter != nil {
		return e.LessonAfter
	}
	return e.LessonBefore
}

// LessonReminder is a task for the notification dispatcher: the lesson starts
// in MinutesBefore minutes.
type LessonReminder struct {
	Type          string `json:"type"` // always "lesson_reminder"
	SourceID      int64  `json:"lesson_id"`
	GroupID       int    `json:"group_id"`
	SubjectName   string `json:"subject_name"`
	TimeSlot      int    `json:"time_slot"`
	RoomName      string `json:"auditory_name"`
	MinutesBefore int    `json:"minutes_before"`
}

// ReminderType is the task type marker for queue consumers.
const ReminderType = "lesson_reminder"
