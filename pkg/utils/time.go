package utils

import (
	"fmt"
	"time"
)

// Clock supplies timestamps to command handlers
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant; tests use it
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// FormatRFC3339 formats t in RFC3339 UTC, the form timestamps are stored in
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ParseStoredTime parses a stored timestamp. An empty column is the zero
// time; anything else must be RFC3339.
func ParseStoredTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := ParseRFC3339(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
