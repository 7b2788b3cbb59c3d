package utils

import "time"

// ParseTimestamp accepts RFC3339 with or without fractional seconds and
// returns the zero time for empty or unparseable input
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

// FormatTimestamp renders t as RFC3339 in UTC, keeping sub-second precision.
// The zero time renders as the empty string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
