package util

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted from date pickers
const DateLayout = "2006-01-02"

// ISOLayout is the absolute-time interchange format sent to data sources
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
// A nil loc means time.Local.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
}

// StartOfDay returns 00:00:00 of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's calendar day in t's location
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// FormatISO renders t in UTC with millisecond precision, e.g. 2024-01-31T23:59:59.000Z
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps and zone-less local date-times
// (2006-01-02T15:04:05 with optional fraction). Zone-less values are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", value, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(DateLayout, value, loc)
}
