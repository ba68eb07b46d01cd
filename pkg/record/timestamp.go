package record

import "time"

// SameDay reports whether a and b fall on the same local calendar day. A zero
// time never matches.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	a, b = a.Local(), b.Local()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Before orders instants with a zero time treated as the oldest possible one.
func Before(a, b time.Time) bool {
	switch {
	case a.IsZero() && b.IsZero():
		return false
	case a.IsZero():
		return true
	case b.IsZero():
		return false
	default:
		return a.Before(b)
	}
}

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
