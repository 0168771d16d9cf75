package chatstats

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDay reads the leading YYYY-MM-DD of an export timestamp.
func parseDay(s string) (time.Time, error) {
	if len(s) < len(dayLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	d, err := time.Parse(dayLayout, s[:len(dayLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return d, nil
}

// parseTimestamp returns the zero time when s is not a full timestamp; the day is what matters.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Day truncates t to its calendar date at UTC midnight, keeping the wall-clock date of t's location.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a calendar date as YYYY-MM-DD, or "" for the zero time.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD date (extra trailing characters are ignored).
func ParseDay(s string) (time.Time, error) {
	return parseDay(s)
}
