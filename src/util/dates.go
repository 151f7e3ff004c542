package util

import (
	"errors"
	"fmt"
	"time"
)

const MonthLayout = "2006-01"

// Stored dates must fall inside [MinDate, MaxDate]. Views walk history day by
// day, so the range also bounds their cost.
var (
	MinDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2199, 12, 31, 0, 0, 0, 0, time.UTC)

	ErrDateOutOfRange = errors.New("date must be between 1900-01-01 and 2199-12-31")
)

// DateInRange reports whether t falls on or between MinDate and MaxDate.
func DateInRange(t time.Time) bool {
	return !t.Before(MinDate) && t.Before(MaxDate.AddDate(0, 0, 1))
}

// ParseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	if !DateInRange(t) {
		return time.Time{}, ErrDateOutOfRange
	}
	return t, nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseMonth reads a YYYY-MM month and returns any instant inside it. An
// empty string selects the month of now.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	if !DateInRange(t) {
		return time.Time{}, ErrDateOutOfRange
	}
	return t, nil
}
