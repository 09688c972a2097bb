// Package timeutil provides timezone utilities for the Omsk campus timezone
// (UTC+6, no DST). The upstream feed publishes day strings in local campus
// time, so all "today" decisions in the sync core go through this package.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// OmskTZ is the Omsk timezone (UTC+6). Russia abolished DST in 2011, so the
// offset is constant year-round.
var OmskTZ = time.FixedZone("Asia/Omsk", 6*60*60)

// Now returns the current time in Omsk.
func Now() time.Time {
	return time.Now().In(OmskTZ)
}

// ToOmsk converts a time to the Omsk timezone.
func ToOmsk(t time.Time) time.Time {
	return t.In(OmskTZ)
}

// Date creates a midnight time in Omsk for the given day.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, OmskTZ)
}

// DateOnly truncates a time to its calendar day in Omsk.
func DateOnly(t time.Time) time.Time {
	local := ToOmsk(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, OmskTZ)
}

// StartOfDay is an alias of DateOnly kept for readability at call sites.
func StartOfDay(t time.Time) time.Time {
	return DateOnly(t)
}

// EndOfDay returns the last nanosecond of the day in Omsk.
func EndOfDay(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	local := ToOmsk(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return DateOnly(local.AddDate(0, 0, -(weekday - 1)))
}

// EndOfWeek returns Sunday 23:59:59.999999999 of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// SameDay reports whether two times fall on the same Omsk calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
