// Package finance turns ledger rows into the derived views of a household:
// recurring occurrences, totals, budget progress, running balance and the
// income/expense flow graph. Everything here is pure and deterministic; "now"
// is always an argument.
package finance

import "time"

// Window is an inclusive range of calendar days in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow truncates both bounds to their calendar day.
func NewWindow(start, end time.Time) Window {
	return Window{Start: day(start), End: day(end)}
}

// MonthWindow returns the calendar month containing now.
func MonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}

func (w Window) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days is the number of calendar days in the window, 0 when End is before Start.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Key is the YYYY-MM month label of the window start.
func (w Window) Key() string {
	return w.Start.Format("2006-01")
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxDay(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
