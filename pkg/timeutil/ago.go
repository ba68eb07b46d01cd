// Package timeutil formats and parses the times shown next to items.
package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is used for anything older than a week.
const DateLayout = "Jan 2, 2006"

// Ago renders t relative to now: "Just now", "5 min ago", "2 hours ago",
// "3 days ago", then the local date. A zero t renders as "".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	}
	return t.Local().Format(DateLayout)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
