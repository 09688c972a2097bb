// Package jobs contains the scheduled jobs of the sync worker: dictionary
// refresh, hot and cold schedule syncs, lesson retention cleanup and the
// reminder scan.
package jobs

import (
	"context"

	syncer "github.com/pwlgk/s13-backend/internal/sync"
)

// DictionarySyncJob refreshes the group/tutor/room dictionaries from the feed.
type DictionarySyncJob struct {
	syncer *syncer.DictionarySyncer
}

// NewDictionarySyncJob creates the dictionary sync job.
func NewDictionarySyncJob(s *syncer.DictionarySyncer) *DictionarySyncJob {
	return &DictionarySyncJob{syncer: s}
}

// Name returns the unique job name.
func (j *DictionarySyncJob) Name() string {
	return "dictionary_sync"
}

// Description returns a human-readable description.
func (j *DictionarySyncJob) Description() string {
	return "Refreshes group, tutor and room dictionaries from the university feed"
}

// Run executes the dictionary sync.
func (j *DictionarySyncJob) Run(ctx context.Context) error {
	return j.syncer.Run(ctx)
}
