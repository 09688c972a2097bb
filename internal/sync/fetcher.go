package sync

import (
	"context"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// Fetcher abstracts the upstream schedule feed.
//
// Every method distinguishes "unavailable" (a non-nil error: transport
// failure, malformed payload, success=false envelope) from a valid empty
// response. Callers must treat an error as "skip this cycle", never as
// "everything was removed upstream".
type Fetcher interface {
	// Groups fetches the group dictionary.
	Groups(ctx context.Context) ([]schedule.Group, error)

	// Tutors fetches the tutor dictionary.
	Tutors(ctx context.Context) ([]schedule.Tutor, error)

	// Rooms fetches the auditory dictionary.
	Rooms(ctx context.Context) ([]schedule.Room, error)

	// GroupSchedule fetches the full day-partitioned schedule of one group.
	// An empty slice is a valid "group has no lessons" answer.
	GroupSchedule(ctx context.Context, groupID int) ([]schedule.FetchedDay, error)
}
