// Package timeutil renders and parses the HH:MM:SS durations daybook
// reports. The hour field is unbounded so multi-day totals stay exact.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as zero-padded HH:MM:SS, with a leading minus
// for negative values. Hours grow past 24 rather than wrapping.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, minutes, seconds)
}

// ParseDuration is the inverse of FormatDuration.
func ParseDuration(s string) (time.Duration, error) {
	negative := false
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}

	var hours, minutes, seconds int64
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &hours, &minutes, &seconds); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if negative {
		d = -d
	}
	return d, nil
}

// ParseClock turns input like "09:30" or "09:30:15" into a timestamp on
// the same calendar day as ref. Empty input means the prompt was cancelled
// and yields the zero time.
func ParseClock(input string, ref time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	var parsed time.Time
	var err error
	switch strings.Count(input, ":") {
	case 1:
		parsed, err = time.Parse("15:04", input)
	case 2:
		parsed, err = time.Parse("15:04:05", input)
	default:
		err = fmt.Errorf("expected HH:MM or HH:MM:SS")
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM", input)
	}

	return time.Date(ref.Year(), ref.Month(), ref.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, ref.Location()), nil
}
