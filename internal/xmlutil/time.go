package xmlutil

import (
	"errors"
	"strings"
	"time"
)

var errNotISO8601 = errors.New("not an ISO 8601 timestamp")

// Accepted shapes, most common first. GData servers emit millisecond
// fractions and either a Z or a numeric offset.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses an ISO 8601 date-time. Times without an offset are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errNotISO8601
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNotISO8601
}

// ParseDate parses either a date-time or a bare calendar date. The second
// result is true for a bare date.
func ParseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}

	t, err := ParseTime(s)
	return t, false, err
}

// FormatTime renders t as a UTC ISO 8601 timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
