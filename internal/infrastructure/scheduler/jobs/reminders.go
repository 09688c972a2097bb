package jobs

import (
	"context"

	syncer "github.com/pwlgk/s13-backend/internal/sync"
)

// ReminderScanJob looks for lessons starting soon and enqueues reminder tasks.
type ReminderScanJob struct {
	scanner *syncer.ReminderScanner
}

// NewReminderScanJob creates the reminder scan job.
func NewReminderScanJob(scanner *syncer.ReminderScanner) *ReminderScanJob {
	return &ReminderScanJob{scanner: scanner}
}

// Name returns the unique job name.
func (j *ReminderScanJob) Name() string {
	return "reminder_scan"
}

// Description returns a human-readable description.
func (j *ReminderScanJob) Description() string {
	return "Enqueues reminders for lessons starting within the configured marks"
}

// Run executes one reminder scan.
func (j *ReminderScanJob) Run(ctx context.Context) error {
	return j.scanner.Run(ctx)
}
