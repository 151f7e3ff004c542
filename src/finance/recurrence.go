package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"domus-server/src/models"
)

// Entry is one dated ledger line, either a stored transaction or an occurrence
// materialized from a recurring rule.
type Entry struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        models.Kind     `json:"kind"`
	Date        time.Time       `json:"date"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Category    models.Category `json:"category"`
	Recurring   bool            `json:"recurring"`
	RuleID      *uuid.UUID      `json:"rule_id,omitempty"`
}

// OccurrenceID identifies the occurrence of a rule on a given day. It never
// collides with a stored transaction id, which is a bare UUID.
func OccurrenceID(ruleID uuid.UUID, d time.Time) string {
	return fmt.Sprintf("rule:%s:%s", ruleID, d.Format(time.DateOnly))
}

// Expand materializes the occurrences of rules inside w. Each rule is clipped
// to its own start/end dates first. Monthly rules are not clamped to the end
// of short months: day 31 produces nothing in a 30-day month. Rules whose
// anchor does not match their frequency produce nothing.
func Expand(rules []models.RecurringTransaction, w Window) []Entry {
	w = NewWindow(w.Start, w.End)
	var out []Entry
	for _, r := range rules {
		match := matcher(r)
		if match == nil {
			continue
		}

		start := maxDay(w.Start, day(r.StartDate))
		end := w.End
		if r.EndDate != nil && day(*r.EndDate).Before(end) {
			end = day(*r.EndDate)
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if match(d) {
				out = append(out, occurrence(r, d))
			}
		}
	}
	return out
}

func matcher(r models.RecurringTransaction) func(time.Time) bool {
	switch r.Frequency {
	case models.Monthly:
		if r.DayOfMonth == nil || *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return nil
		}
		dom := *r.DayOfMonth
		return func(d time.Time) bool { return d.Day() == dom }
	case models.Weekly:
		if r.DayOfWeek == nil || *r.DayOfWeek < 1 || *r.DayOfWeek > 7 {
			return nil
		}
		dow := *r.DayOfWeek
		// 1 = Sunday ... 7 = Saturday
		return func(d time.Time) bool { return int(d.Weekday())+1 == dow }
	case models.Yearly:
		start := day(r.StartDate)
		return func(d time.Time) bool { return d.Month() == start.Month() && d.Day() == start.Day() }
	}
	return nil
}

func occurrence(r models.RecurringTransaction, d time.Time) Entry {
	ruleID := r.ID
	return Entry{
		ID:          OccurrenceID(r.ID, d),
		Description: r.Description,
		Amount:      r.Amount,
		Kind:        r.Kind,
		Date:        d,
		CategoryID:  r.CategoryID,
		Recurring:   true,
		RuleID:      &ruleID,
	}
}
