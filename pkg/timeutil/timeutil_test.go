package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly_CrossesUTCDayBoundary(t *testing.T) {
	// 22:00 UTC on 01.09 is already 02.09 in Omsk.
	utcEvening := time.Date(2025, 9, 1, 22, 0, 0, 0, time.UTC)

	assert.True(t, DateOnly(utcEvening).Equal(Date(2025, 9, 2)))
}

func TestFeedDateComparesAgainstOmskToday(t *testing.T) {
	// Feed day strings parse to UTC midnight. A lesson dated "today" must not
	// read as past against Omsk midnight, and yesterday's must.
	today := Date(2025, 9, 2)

	feedToday := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	feedYesterday := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, feedToday.Before(today))
	assert.True(t, feedYesterday.Before(today))
}

func TestWeekBounds(t *testing.T) {
	// 02.09.2025 is a Tuesday.
	tuesday := time.Date(2025, 9, 2, 15, 0, 0, 0, OmskTZ)

	assert.True(t, StartOfWeek(tuesday).Equal(Date(2025, 9, 1)))
	assert.True(t, EndOfWeek(tuesday).Before(Date(2025, 9, 8)))
	assert.True(t, SameDay(EndOfWeek(tuesday), Date(2025, 9, 7)))
}
