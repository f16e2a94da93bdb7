package main

import (
	"strings"
	"time"
)

// parseDay accepts YYYY-MM-DD or RFC3339. Blank input yields the zero time.
// Bare dates land at the end of that day in loc.
func parseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return endOfDay(day), nil
}

func parseOptionalDay(value string, loc *time.Location) (*time.Time, error) {
	t, err := parseDay(value, loc)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
