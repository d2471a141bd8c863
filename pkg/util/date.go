package util

import (
	"time"
)

const isoDate = "2006-01-02"

// ParseDate tries ISO date (2006-01-02), RFC3339, and RFC3339Nano.
// Returns (t, true) if any worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(isoDate, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}

// DaysBetween returns the whole number of days from `from` to `to`.
// Both are truncated to midnight UTC first so partial days do not skew
// the count.
func DaysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
