package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf drops the time-of-day of t, keeping the calendar day as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from start to end. Unix seconds are used
// since time.Duration saturates after about 292 years.
func DaysBetween(start, end time.Time) int {
	return int((DateOf(end).Unix() - DateOf(start).Unix()) / secondsPerDay)
}

// InclusiveDays is the number of calendar days covered by [start, end].
func InclusiveDays(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}
