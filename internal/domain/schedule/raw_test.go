package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawLesson_DecodedFromJSON(t *testing.T) {
	payload := `{
		"id": 555,
		"lesson_id": 42,
		"day": "02.09.2025",
		"time": 3,
		"lesson": "Математический анализ",
		"type_work": "лекция",
		"teacher_id": 7,
		"auditory_id": 9,
		"subgroupName": "1 подгруппа"
	}`

	var raw RawLesson
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	assert.Equal(t, int64(555), raw.SourceID())
	assert.Equal(t, 42, raw.CellID())
	assert.Equal(t, 3, raw.TimeSlot())
	assert.Equal(t, "Математический анализ", raw.SubjectName())
	assert.Equal(t, "лекция", raw.LessonType())
	assert.Equal(t, 7, raw.TutorID())
	assert.Equal(t, 9, raw.RoomID())
	assert.Equal(t, "1 подгруппа", raw.SubgroupName())

	date, ok := raw.Date()
	require.True(t, ok)
	assert.Equal(t, "02.09.2025", date.Format(LessonDateLayout))
}

func TestRawLesson_NumericFieldVariants(t *testing.T) {
	// Upstream is inconsistent about number encoding.
	cases := []struct {
		name string
		raw  RawLesson
		want int64
	}{
		{"float64", RawLesson{"id": float64(7)}, 7},
		{"int", RawLesson{"id": int(7)}, 7},
		{"json number", RawLesson{"id": json.Number("7")}, 7},
		{"string", RawLesson{"id": "7"}, 7},
		{"missing", RawLesson{}, 0},
		{"garbage", RawLesson{"id": "abc"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.raw.SourceID())
		})
	}
}

func TestRawLesson_MissingSubjectFallsBack(t *testing.T) {
	raw := RawLesson{"id": float64(1)}
	assert.Equal(t, "N/A", raw.SubjectName())
}

func TestRawLesson_BadDate(t *testing.T) {
	raw := RawLesson{"id": float64(1), "day": "2025-09-02"}
	_, ok := raw.Date()
	assert.False(t, ok)
}

func TestLessonInfo_MatchesSubgroup(t *testing.T) {
	whole := LessonInfo{SubgroupName: ""}
	first := LessonInfo{SubgroupName: "1 подгруппа"}

	assert.True(t, whole.MatchesSubgroup("2 подгруппа"))
	assert.True(t, first.MatchesSubgroup(""))
	assert.True(t, first.MatchesSubgroup("1 подгруппа"))
	assert.False(t, first.MatchesSubgroup("2 подгруппа"))
}

func TestChangeEvent_Subject(t *testing.T) {
	before := &LessonInfo{SourceID: 1}
	after := &LessonInfo{SourceID: 2}

	assert.Equal(t, after, ChangeEvent{LessonBefore: before, LessonAfter: after}.Subject())
	assert.Equal(t, before, ChangeEvent{LessonBefore: before}.Subject())
}

func TestChangeEvent_WireShape(t *testing.T) {
	after := LessonInfo{
		SourceID:    555,
		Date:        "02.09.2025",
		TimeSlot:    3,
		SubjectName: "Алгебра",
	}
	event := ChangeEvent{ChangeType: ChangeNew, GroupID: 1178, LessonAfter: &after}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "NEW", decoded["change_type"])
	assert.NotContains(t, decoded, "lesson_before", "empty side must be omitted")

	lesson := decoded["lesson_after"].(map[string]any)
	assert.Equal(t, float64(555), lesson["source_id"])
	assert.Equal(t, "02.09.2025", lesson["date"])
}

func TestLessonReminder_WireShape(t *testing.T) {
	reminder := LessonReminder{
		Type:          ReminderType,
		SourceID:      555,
		GroupID:       1178,
		SubjectName:   "Алгебра",
		TimeSlot:      1,
		RoomName:      "404",
		MinutesBefore: 15,
	}

	data, err := json.Marshal(reminder)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Field names are a queue contract with the notification dispatcher.
	assert.Equal(t, "lesson_reminder", decoded["type"])
	assert.Equal(t, float64(555), decoded["lesson_id"])
	assert.Equal(t, "404", decoded["auditory_name"])
	assert.Equal(t, float64(15), decoded["minutes_before"])
}
