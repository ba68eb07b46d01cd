package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ParseSince turns a --since flag into an instant. It takes a calendar date
// ("2025-03-01", local midnight), a day or week count ("3d", "2w"), or any
// time.ParseDuration value ("90m", "1h30m"), counted back from now.
func ParseSince(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	d, err := parseWindow(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}

func parseWindow(s string) (time.Duration, error) {
	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = day
	case strings.HasSuffix(s, "w"):
		unit = 7 * day
	}
	if unit != 0 {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("timeutil: invalid window %q", s)
		}
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid window %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeutil: window %q must be positive", s)
	}
	return d, nil
}
