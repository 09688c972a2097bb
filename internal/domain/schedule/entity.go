// Package schedule contains the domain model for the university schedule:
// reference dictionaries (groups, tutors, rooms), lesson records keyed by the
// upstream source id, and the change events produced by reconciliation.
package schedule

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE DICTIONARIES
// ══════════════════════════════════════════════════════════════════════════════

// Group is a study group as published by the university feed.
// The ID is assigned upstream and never changes.
type Group struct {
	// ID is the upstream group identifier.
	ID int `json:"id"`

	// Name is the display name, e.g. "МПБ-901-О-01".
	Name string `json:"name"`

	// RealGroupID is the secondary identifier some feed endpoints use.
	RealGroupID int `json:"real_group_id,omitempty"`
}

// Tutor is a teacher dictionary record.
type Tutor struct {
	// ID is the upstream tutor identifier.
	ID int `json:"id"`

	// Name is the tutor's display name.
	Name string `json:"name"`
}

// Room is an auditory dictionary record.
type Room struct {
	// ID is the upstream auditory identifier.
	ID int `json:"id"`

	// Name is the room number/name.
	Name string `json:"name"`

	// Building is the building the room is located in, may be empty.
	Building string `json:"building,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSONS
// ══════════════════════════════════════════════════════════════════════════════

// LessonDateLayout is the day format used by the upstream feed and by the
// outbound notification contract (day.month.year).
const LessonDateLayout = "02.01.2006"

// Lesson is a single stored lesson occurrence. The primary key is the
// upstream source id, which stays stable across feed republications and
// makes upserts idempotent.
type Lesson struct {
	// SourceID is the upstream primary key of this occurrence.
	SourceID int64

	// CellID is the upstream schedule-cell reference ("lesson_id" in the feed).
	CellID int

	// Date is the calendar day of the lesson (time part is zero).
	Date time.Time

	// TimeSlot is the ordinal period number within the day (1 = first period).
	TimeSlot int

	// SubgroupName partitions the lesson to a subset of the group, may be empty.
	SubgroupName string

	// SubjectName is the subject display name.
	SubjectName string

	// LessonType is the kind of class (lecture, practice, lab...).
	LessonType string

	// ContentHash is the fingerprint of the semantic fields; see sync.Fingerprint.
	ContentHash string

	// LastSeenAt is refreshed every time the record is confirmed by a fetch.
	LastSeenAt time.Time

	GroupID int
	TutorID int
	RoomID  int
}

// Snapshot returns the compact representation of the lesson used in change
// events and reminders.
func (l *Lesson) Snapshot() LessonInfo {
	return LessonInfo{
		SourceID:     l.SourceID,
		Date:         l.Date.Format(LessonDateLayout),
		TimeSlot:     l.TimeSlot,
		SubjectName:  l.SubjectName,
		SubgroupName: l.SubgroupName,
		TutorID:      l.TutorID,
		RoomID:       l.RoomID,
	}
}

// LessonInfo is a typed snapshot of a lesson occurrence. It is the single
// value used everywhere a lesson leaves the sync core: change events,
// reminder tasks and preference filtering all share this shape.
type LessonInfo struct {
	SourceID     int64  `json:"source_id"`
	Date         string `json:"date"` // LessonDateLayout
	TimeSlot     int    `json:"time_slot"`
	SubjectName  string `json:"subject_name"`
	SubgroupName string `json:"subgroup_name,omitempty"`
	TutorID      int    `json:"tutor_id,omitempty"`
	RoomID       int    `json:"room_id,omitempty"`
}

// MatchesSubgroup reports whether the lesson applies to a user that picked
// the given subgroup. Lessons without a subgroup apply to everyone.
func (i LessonInfo) MatchesSubgroup(subgroup string) bool {
	if i.SubgroupName == "" || subgroup == "" {
		return true
	}
	return i.SubgroupName == subgroup
}

// UpcomingLesson is a lesson about to start, enriched with the room name for
// the reminder message.
type UpcomingLesson struct {
	Lesson
	RoomName string
}
