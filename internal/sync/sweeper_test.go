package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionSweep_CutoffArithmetic(t *testing.T) {
	lessons := &fakeLessonRepo{sweepRemoved: 5}

	sweeper := NewRetentionSweeper(lessons, 72*time.Hour, nil)
	sweeper.now = func() time.Time { return testNow }

	removed, err := sweeper.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.Equal(t, testNow.Add(-72*time.Hour), lessons.sweepCutoff)
}

func TestRetentionSweep_DefaultWindow(t *testing.T) {
	sweeper := NewRetentionSweeper(&fakeLessonRepo{}, 0, nil)
	assert.Equal(t, DefaultRetentionWindow, sweeper.window)
}

func TestRetentionSweep_ErrorPropagates(t *testing.T) {
	lessons := &fakeLessonRepo{sweepErr: errors.New("db down")}

	_, err := NewRetentionSweeper(lessons, time.Hour, nil).Run(context.Background())
	assert.Error(t, err)
}
