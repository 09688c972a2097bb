// Package omsu implements the client for the university schedule feed
// (eservice backend). It exposes the dictionary endpoints and the per-group
// schedule endpoint the sync core consumes.
package omsu

import (
	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// ══════════════════════════════════════════════════════════════════════════════
// API RESPONSE WRAPPERS
// ══════════════════════════════════════════════════════════════════════════════

// APIResponse is the feed's generic envelope. Success distinguishes a valid
// (possibly empty) payload from a backend-side failure; the sync core relies
// on that distinction to tell "no lessons" apart from "feed unavailable".
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// GroupDTO is a study group as published by the dictionary endpoint.
type GroupDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	RealGroupID int    `json:"real_group_id"`
}

// TutorDTO is a teacher dictionary record.
type TutorDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AuditoryDTO is a room dictionary record. The feed calls rooms "auditories".
type AuditoryDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// DayDTO is one day of the per-group schedule response. Lesson occurrences
// stay as raw mappings: the content fingerprint is computed over whatever
// fields the feed published, so the client must not normalize them.
type DayDTO struct {
	Day     string               `json:"day"`
	Lessons []schedule.RawLesson `json:"lessons"`
}
