package omsu

import (
	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// Mapper converts feed DTOs into domain values.
type Mapper struct{}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Groups maps the group dictionary.
func (m *Mapper) Groups(dtos []GroupDTO) []schedule.Group {
	out := make([]schedule.Group, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, schedule.Group{
			ID:          d.ID,
			Name:        d.Name,
			RealGroupID: d.RealGroupID,
		})
	}
	return out
}

// Tutors maps the tutor dictionary.
func (m *Mapper) Tutors(dtos []TutorDTO) []schedule.Tutor {
	out := make([]schedule.Tutor, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, schedule.Tutor{
			ID:   d.ID,
			Name: d.Name,
		})
	}
	return out
}

// Rooms maps the auditory dictionary.
func (m *Mapper) Rooms(dtos []AuditoryDTO) []schedule.Room {
	out := make([]schedule.Room, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, schedule.Room{
			ID:       d.ID,
			Name:     d.Name,
			Building: d.Building,
		})
	}
	return out
}

// Schedule maps the day-partitioned schedule response.
func (m *Mapper) Schedule(dtos []DayDTO) []schedule.FetchedDay {
	out := make([]schedule.FetchedDay, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, schedule.FetchedDay{
			Day:     d.Day,
			Lessons: d.Lessons,
		})
	}
	return out
}
