package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(20 * time.Minute)

	now := time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(20*time.Minute), s.Next(now))
	assert.Equal(t, "@every 20m0s", s.String())
}

func TestDailyAtSchedule_Next(t *testing.T) {
	omsk := time.FixedZone("Asia/Omsk", 6*60*60)
	s := NewDailyAtSchedule(3, 0, omsk)

	t.Run("before the mark fires today", func(t *testing.T) {
		now := time.Date(2025, 9, 2, 1, 30, 0, 0, omsk)
		want := time.Date(2025, 9, 2, 3, 0, 0, 0, omsk)
		assert.True(t, s.Next(now).Equal(want))
	})

	t.Run("after the mark fires tomorrow", func(t *testing.T) {
		now := time.Date(2025, 9, 2, 3, 0, 1, 0, omsk)
		want := time.Date(2025, 9, 3, 3, 0, 0, 0, omsk)
		assert.True(t, s.Next(now).Equal(want))
	})

	t.Run("exactly at the mark fires tomorrow", func(t *testing.T) {
		now := time.Date(2025, 9, 2, 3, 0, 0, 0, omsk)
		want := time.Date(2025, 9, 3, 3, 0, 0, 0, omsk)
		assert.True(t, s.Next(now).Equal(want))
	})

	t.Run("input in another zone converts", func(t *testing.T) {
		// 22:00 UTC on 01.09 is 04:00 Omsk on 02.09, past the mark.
		now := time.Date(2025, 9, 1, 22, 0, 0, 0, time.UTC)
		want := time.Date(2025, 9, 3, 3, 0, 0, 0, omsk)
		assert.True(t, s.Next(now).Equal(want))
	})
}

func TestDailyAtSchedule_NilLocationDefaultsToUTC(t *testing.T) {
	s := NewDailyAtSchedule(4, 30, nil)
	assert.Equal(t, time.UTC, s.Location)
	assert.Equal(t, "@daily 04:30 UTC", s.String())
}
