package sync

import (
	"context"
	"fmt"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARY SYNC
// ══════════════════════════════════════════════════════════════════════════════

// Tutor names the feed uses as blank markers. Entries with these names are
// placeholders, not people, and are never upserted.
var sentinelTutorNames = map[string]struct{}{
	"-":  {},
	"--": {},
	"_":  {},
}

// DictionarySyncer upserts the reference dictionaries (groups, tutors,
// rooms) from the upstream feed.
//
// Failure policy: a failed or empty fetch for one collection only skips that
// collection. A database error rolls back all three, since reconciliation
// needs the dictionaries committed together.
type DictionarySyncer struct {
	fetcher Fetcher
	repo    schedule.DictionaryRepository
	log     *logger.Logger
}

// NewDictionarySyncer creates a DictionarySyncer.
func NewDictionarySyncer(fetcher Fetcher, repo schedule.DictionaryRepository, log *logger.Logger) *DictionarySyncer {
	if log == nil {
		log = logger.Default()
	}
	return &DictionarySyncer{
		fetcher: fetcher,
		repo:    repo,
		log:     log.With(logger.Component("dictionary_sync")),
	}
}

// Run fetches and upserts all three collections.
func (s *DictionarySyncer) Run(ctx context.Context) error {
	groups, err := s.fetcher.Groups(ctx)
	if err != nil {
		s.log.Warn("groups fetch failed, skipping collection", logger.Err(err))
		groups = nil
	}
	groups = filterGroups(groups)

	tutors, err := s.fetcher.Tutors(ctx)
	if err != nil {
		s.log.Warn("tutors fetch failed, skipping collection", logger.Err(err))
		tutors = nil
	}
	tutors = filterTutors(tutors)

	rooms, err := s.fetcher.Rooms(ctx)
	if err != nil {
		s.log.Warn("rooms fetch failed, skipping collection", logger.Err(err))
		rooms = nil
	}
	rooms = filterRooms(rooms)

	counts, err := s.repo.UpsertAll(ctx, groups, tutors, rooms)
	if err != nil {
		return fmt.Errorf("dictionary upsert: %w", err)
	}

	s.log.Info("dictionaries synced",
		logger.Int("groups", counts.Groups),
		logger.Int("tutors", counts.Tutors),
		logger.Int("rooms", counts.Rooms),
	)
	return nil
}

func filterGroups(in []schedule.Group) []schedule.Group {
	out := in[:0]
	for _, g := range in {
		if g.ID <= 0 {
			continue
		}
		out = append(out, g)
	}
	return out
}

func filterTutors(in []schedule.Tutor) []schedule.Tutor {
	out := in[:0]
	for _, t := range in {
		if t.ID <= 0 {
			continue
		}
		if _, blank := sentinelTutorNames[t.Name]; blank {
			continue
		}
		out = append(out, t)
	}
	return out
}

func filterRooms(in []schedule.Room) []schedule.Room {
	out := in[:0]
	for _, r := range in {
		if r.ID <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
