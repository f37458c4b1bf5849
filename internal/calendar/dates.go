package calendar

import (
	"fmt"
	"time"
)

// dateKeyLayout is the YYYY-MM-DD form used as day-record document keys.
const dateKeyLayout = "2006-01-02"

// DateKey formats t as the date key of the calendar day it falls on.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD date key. The result is midnight UTC
// of that calendar day.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// ValidDateKey reports whether key is a well-formed date key.
func ValidDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

// MonthKeys returns the date keys for every day of the given month, in
// order. Month is 1-12.
func MonthKeys(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	keys := make([]string, days)
	for d := 0; d < days; d++ {
		keys[d] = DateKey(first.AddDate(0, 0, d))
	}
	return keys
}
