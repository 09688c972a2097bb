package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

func TestFingerprint_StableAcrossVolatileFields(t *testing.T) {
	a := schedule.RawLesson{
		"id":          float64(1001),
		"publishDate": "2025-09-01T10:00:00",
		"day":         "02.09.2025",
		"time":        float64(1),
		"lesson":      "Algebra",
	}
	b := schedule.RawLesson{
		"id":          float64(2002),
		"publishDate": "2025-09-02T08:30:00",
		"day":         "02.09.2025",
		"time":        float64(1),
		"lesson":      "Algebra",
	}

	assert.Equal(t, Fingerprint(a), Fingerprint(b),
		"row id and publish timestamp must not affect the fingerprint")
}

func TestFingerprint_SensitiveToSemanticFields(t *testing.T) {
	base := rawLesson(1, "02.09.2025", 1, "Algebra")

	moved := rawLesson(1, "02.09.2025", 2, "Algebra")
	renamed := rawLesson(1, "02.09.2025", 1, "Geometry")
	otherRoom := rawLesson(1, "02.09.2025", 1, "Algebra")
	otherRoom["auditory_id"] = float64(404)

	assert.NotEqual(t, Fingerprint(base), Fingerprint(moved))
	assert.NotEqual(t, Fingerprint(base), Fingerprint(renamed))
	assert.NotEqual(t, Fingerprint(base), Fingerprint(otherRoom))
}

func TestFingerprint_UnknownFieldsParticipate(t *testing.T) {
	base := rawLesson(1, "02.09.2025", 1, "Algebra")

	extended := rawLesson(1, "02.09.2025", 1, "Algebra")
	extended["comment"] = "перенос из 404"

	assert.NotEqual(t, Fingerprint(base), Fingerprint(extended),
		"fields the worker does not model still count as content")
}

func TestFingerprint_Format(t *testing.T) {
	hash := Fingerprint(rawLesson(1, "02.09.2025", 1, "Algebra"))
	assert.Len(t, hash, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", hash)
}

func TestFingerprint_DoesNotMutateInput(t *testing.T) {
	raw := rawLesson(1, "02.09.2025", 1, "Algebra")
	_ = Fingerprint(raw)

	assert.Contains(t, raw, "id")
}
