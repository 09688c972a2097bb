package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RETENTION SWEEPER
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRetentionWindow is how long an unobserved lesson row survives.
const DefaultRetentionWindow = 72 * time.Hour

// RetentionSweeper deletes lesson rows not confirmed by any fetch within the
// retention window, regardless of their date. This catches rows orphaned by
// a group leaving the sync set or by the feed dropping records without an
// explicit cancellation.
type RetentionSweeper struct {
	lessons schedule.LessonRepository
	window  time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// NewRetentionSweeper creates a RetentionSweeper. A non-positive window
// falls back to DefaultRetentionWindow.
func NewRetentionSweeper(lessons schedule.LessonRepository, window time.Duration, log *logger.Logger) *RetentionSweeper {
	if window <= 0 {
		window = DefaultRetentionWindow
	}
	if log == nil {
		log = logger.Default()
	}
	return &RetentionSweeper{
		lessons: lessons,
		window:  window,
		now:     time.Now,
		log:     log.With(logger.Component("retention_sweeper")),
	}
}

// Run deletes stale rows in a single transaction and returns the count.
func (s *RetentionSweeper) Run(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.window)

	removed, err := s.lessons.DeleteNotSeenSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}

	s.log.Info("retention sweep finished",
		logger.Int64("removed", removed),
		logger.Time("cutoff", cutoff),
	)
	return removed, nil
}
