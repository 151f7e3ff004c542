package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"domus-server/src/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(v int) *int { return &v }

func monthly(dom int, start time.Time) models.RecurringTransaction {
	return models.RecurringTransaction{
		ID:          uuid.New(),
		Description: "Salário",
		Amount:      decimal.NewFromInt(1000),
		Kind:        models.Income,
		Frequency:   models.Monthly,
		DayOfMonth:  intp(dom),
		StartDate:   start,
	}
}

func TestExpandMonthlySingleOccurrence(t *testing.T) {
	r := monthly(15, date(2024, 1, 1))
	w := NewWindow(date(2024, 3, 1), date(2024, 3, 31))

	got := Expand([]models.RecurringTransaction{r}, w)
	require.Len(t, got, 1)
	require.Equal(t, date(2024, 3, 15), got[0].Date)
	require.True(t, got[0].Amount.Equal(decimal.NewFromInt(1000)))
	require.Equal(t, "rule:"+r.ID.String()+":2024-03-15", got[0].ID)
	require.True(t, got[0].Recurring)
	require.Equal(t, r.ID, *got[0].RuleID)
}

func TestExpandIsIdempotent(t *testing.T) {
	rules := []models.RecurringTransaction{monthly(1, date(2024, 1, 1)), monthly(20, date(2023, 6, 1))}
	w := NewWindow(date(2024, 1, 1), date(2024, 12, 31))

	require.Equal(t, Expand(rules, w), Expand(rules, w))
}

func TestExpandClipsToRuleBounds(t *testing.T) {
	r := monthly(10, date(2024, 3, 11))
	end := date(2024, 6, 9)
	r.EndDate = &end
	w := NewWindow(date(2024, 1, 1), date(2024, 12, 31))

	got := Expand([]models.RecurringTransaction{r}, w)
	require.Len(t, got, 2)
	require.Equal(t, date(2024, 4, 10), got[0].Date)
	require.Equal(t, date(2024, 5, 10), got[1].Date)
	for _, o := range got {
		require.True(t, w.Contains(o.Date))
		require.False(t, o.Date.Before(r.StartDate))
		require.False(t, o.Date.After(end))
	}
}

func TestExpandRuleStartingAfterWindow(t *testing.T) {
	r := monthly(5, date(2025, 1, 1))
	w := NewWindow(date(2024, 1, 1), date(2024, 12, 31))

	require.Empty(t, Expand([]models.RecurringTransaction{r}, w))
}

func TestExpandRuleEndedBeforeWindow(t *testing.T) {
	r := monthly(5, date(2023, 1, 1))
	end := date(2023, 12, 31)
	r.EndDate = &end
	w := NewWindow(date(2024, 1, 1), date(2024, 12, 31))

	require.Empty(t, Expand([]models.RecurringTransaction{r}, w))
}

func TestExpandDay31SkipsShortMonths(t *testing.T) {
	r := monthly(31, date(2024, 1, 1))

	require.Empty(t, Expand([]models.RecurringTransaction{r}, NewWindow(date(2024, 4, 1), date(2024, 4, 30))))
	require.Empty(t, Expand([]models.RecurringTransaction{r}, NewWindow(date(2024, 2, 1), date(2024, 2, 29))))
	require.Len(t, Expand([]models.RecurringTransaction{r}, NewWindow(date(2024, 5, 1), date(2024, 5, 31))), 1)
}

func TestExpandWeeklySundayIsOne(t *testing.T) {
	r := models.RecurringTransaction{
		ID:        uuid.New(),
		Amount:    decimal.NewFromInt(50),
		Kind:      models.Expense,
		Frequency: models.Weekly,
		DayOfWeek: intp(1),
		StartDate: date(2024, 1, 1),
	}
	// September 2024 has five Sundays: 1, 8, 15, 22 and 29.
	got := Expand([]models.RecurringTransaction{r}, NewWindow(date(2024, 9, 1), date(2024, 9, 30)))
	require.Len(t, got, 5)
	for _, o := range got {
		require.Equal(t, time.Sunday, o.Date.Weekday())
	}
	require.Equal(t, date(2024, 9, 1), got[0].Date)
}

func TestExpandYearlyUsesStartDate(t *testing.T) {
	r := models.RecurringTransaction{
		ID:        uuid.New(),
		Amount:    decimal.NewFromInt(300),
		Kind:      models.Expense,
		Frequency: models.Yearly,
		StartDate: date(2022, 7, 14),
	}
	got := Expand([]models.RecurringTransaction{r}, NewWindow(date(2023, 1, 1), date(2024, 12, 31)))
	require.Len(t, got, 2)
	require.Equal(t, date(2023, 7, 14), got[0].Date)
	require.Equal(t, date(2024, 7, 14), got[1].Date)
}

func TestExpandMalformedRulesYieldNothing(t *testing.T) {
	w := NewWindow(date(2024, 1, 1), date(2024, 12, 31))
	rules := []models.RecurringTransaction{
		{ID: uuid.New(), Frequency: models.Monthly, StartDate: date(2024, 1, 1)},
		{ID: uuid.New(), Frequency: models.Monthly, DayOfMonth: intp(0), StartDate: date(2024, 1, 1)},
		{ID: uuid.New(), Frequency: models.Weekly, StartDate: date(2024, 1, 1)},
		{ID: uuid.New(), Frequency: models.Weekly, DayOfWeek: intp(8), StartDate: date(2024, 1, 1)},
		{ID: uuid.New(), Frequency: "daily", DayOfMonth: intp(3), StartDate: date(2024, 1, 1)},
	}
	require.Empty(t, Expand(rules, w))
}

func TestExpandInvertedWindow(t *testing.T) {
	r := monthly(1, date(2020, 1, 1))
	require.Empty(t, Expand([]models.RecurringTransaction{r}, NewWindow(date(2024, 5, 1), date(2024, 4, 1))))
}
