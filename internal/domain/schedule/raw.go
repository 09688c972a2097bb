package schedule

import (
	"encoding/json"
	"strconv"
	"time"
)

// RawLesson is one lesson occurrence exactly as the feed published it.
// The sync core keeps the raw mapping because the content fingerprint is
// computed over the upstream fields, whatever they happen to be.
type RawLesson map[string]any

// FetchedDay is one day of the per-group schedule response.
type FetchedDay struct {
	// Day is the feed's day string, LessonDateLayout format.
	Day string

	// Lessons are the occurrences published for that day.
	Lessons []RawLesson
}

// Upstream field names of a lesson occurrence.
const (
	rawFieldSourceID = "id"
	rawFieldCellID   = "lesson_id"
	rawFieldTutorID  = "teacher_id"
	rawFieldRoomID   = "auditory_id"
	rawFieldDay      = "day"
	rawFieldTimeSlot = "time"
	rawFieldSubject  = "lesson"
	rawFieldType     = "type_work"
	rawFieldSubgroup = "subgroupName"
)

// SourceID returns the upstream primary key, or 0 when absent.
func (r RawLesson) SourceID() int64 {
	v, _ := r.intField(rawFieldSourceID)
	return v
}

// Date parses the occurrence day. The second return value is false when the
// field is missing or malformed.
func (r RawLesson) Date() (time.Time, bool) {
	s, ok := r[rawFieldDay].(string)
	if !ok {
		return time.Time{}, false
	}
	d, err := time.Parse(LessonDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DayString returns the unparsed day field.
func (r RawLesson) DayString() string {
	s, _ := r[rawFieldDay].(string)
	return s
}

// TimeSlot returns the period number, or 0 when absent.
func (r RawLesson) TimeSlot() int {
	v, _ := r.intField(rawFieldTimeSlot)
	return int(v)
}

// SubjectName returns the subject, or "N/A" when the feed omitted it.
func (r RawLesson) SubjectName() string {
	if s, ok := r[rawFieldSubject].(string); ok && s != "" {
		return s
	}
	return "N/A"
}

// LessonType returns the class kind, or "N/A" when absent.
func (r RawLesson) LessonType() string {
	if s, ok := r[rawFieldType].(string); ok && s != "" {
		return s
	}
	return "N/A"
}

// SubgroupName returns the optional subgroup label.
func (r RawLesson) SubgroupName() string {
	s, _ := r[rawFieldSubgroup].(string)
	return s
}

// TutorID returns the teacher reference, or 0 when absent.
func (r RawLesson) TutorID() int {
	v, _ := r.intField(rawFieldTutorID)
	return int(v)
}

// RoomID returns the auditory reference, or 0 when absent.
func (r RawLesson) RoomID() int {
	v, _ := r.intField(rawFieldRoomID)
	return int(v)
}

// CellID returns the schedule-cell reference, or 0 when absent.
func (r RawLesson) CellID() int {
	v, _ := r.intField(rawFieldCellID)
	return int(v)
}

// Snapshot builds the compact lesson representation from the raw occurrence.
func (r RawLesson) Snapshot() LessonInfo {
	return LessonInfo{
		SourceID:     r.SourceID(),
		Date:         r.DayString(),
		TimeSlot:     r.TimeSlot(),
		SubjectName:  r.SubjectName(),
		SubgroupName: r.SubgroupName(),
		TutorID:      r.TutorID(),
		RoomID:       r.RoomID(),
	}
}

// intField reads a numeric field that json decoding may have produced as
// float64, json.Number or a quoted string.
func (r RawLesson) intField(key string) (int64, bool) {
	switch v := r[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
