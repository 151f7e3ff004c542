package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"domus-server/src/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strp(s string) *string { return &s }

func expense(cat *uuid.UUID, amount string, d time.Time) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		Description: "compra",
		Amount:      dec(amount),
		Kind:        models.Expense,
		CategoryID:  cat,
		Date:        d,
	}
}

func income(cat *uuid.UUID, amount string, d time.Time) models.Transaction {
	t := expense(cat, amount, d)
	t.Description = "entrada"
	t.Kind = models.Income
	return t
}

func TestAggregateBudgetIsCapped(t *testing.T) {
	budget := dec("500")
	food := models.Category{ID: uuid.New(), Name: "Food", Kind: models.Expense, Budget: &budget}
	w := MonthWindow(date(2024, 3, 10))
	txs := []models.Transaction{
		expense(&food.ID, "300", date(2024, 3, 2)),
		expense(&food.ID, "250", date(2024, 3, 9)),
	}

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, nil, []models.Category{food}, w, decimal.Zero)
	require.Len(t, s.Budgets, 1)
	b := s.Budgets[0]
	require.Equal(t, food.ID, b.CategoryID)
	require.Equal(t, "Food", b.Name)
	require.True(t, b.Spent.Equal(dec("550")))
	require.True(t, b.Budget.Equal(dec("500")))
	require.True(t, b.Progress.Equal(dec("100")))
}

func TestAggregateBudgetProgressRounds(t *testing.T) {
	budget := dec("300")
	rent := models.Category{ID: uuid.New(), Name: "Aluguel", Kind: models.Expense, Budget: &budget}
	zero := decimal.Zero
	free := models.Category{ID: uuid.New(), Name: "Lazer", Kind: models.Expense, Budget: &zero}
	plain := models.Category{ID: uuid.New(), Name: "Mercado", Kind: models.Expense}
	w := MonthWindow(date(2024, 3, 10))
	txs := []models.Transaction{expense(&rent.ID, "100", date(2024, 3, 5))}

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, nil, []models.Category{rent, free, plain}, w, decimal.Zero)
	require.Len(t, s.Budgets, 1)
	require.Equal(t, "33.33", s.Budgets[0].Progress.String())
}

func TestAggregateIgnoresEntriesOutsideWindow(t *testing.T) {
	w := MonthWindow(date(2024, 3, 1))
	txs := []models.Transaction{
		income(nil, "10", date(2024, 2, 29)),
		income(nil, "20", date(2024, 3, 1)),
		income(nil, "30", date(2024, 3, 31)),
		income(nil, "40", date(2024, 4, 1)),
	}

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, nil, nil, w, decimal.Zero)
	require.True(t, s.Totals.Income.Equal(dec("50")))
	require.True(t, s.Totals.Expense.IsZero())
	require.Len(t, s.Entries, 2)
}

func TestAggregateRunningBalanceConserves(t *testing.T) {
	w := MonthWindow(date(2024, 2, 1))
	rule := monthly(10, date(2024, 1, 1))
	txs := []models.Transaction{
		income(nil, "200.50", date(2024, 2, 3)),
		expense(nil, "75.25", date(2024, 2, 3)),
		expense(nil, "1300", date(2024, 2, 28)),
	}
	opening := dec("42")

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, Expand([]models.RecurringTransaction{rule}, w), nil, w, opening)
	require.Len(t, s.DailyBalance, 29)
	require.Equal(t, w.Start, s.DailyBalance[0].Date)
	require.Equal(t, w.End, s.DailyBalance[28].Date)

	last := s.DailyBalance[len(s.DailyBalance)-1].Balance
	require.True(t, last.Equal(opening.Add(s.Totals.Income).Sub(s.Totals.Expense)), "got %s", last)
	require.True(t, s.DailyBalance[9].Balance.Equal(dec("1167.25")))
}

func TestAggregateUncategorizedFallback(t *testing.T) {
	missing := uuid.New()
	w := MonthWindow(date(2024, 3, 1))
	txs := []models.Transaction{
		expense(nil, "10", date(2024, 3, 1)),
		expense(&missing, "15", date(2024, 3, 2)),
	}
	fb := DefaultFallbacks()

	s := NewEngine(fb).Aggregate(txs, nil, nil, w, decimal.Zero)
	require.Len(t, s.ExpensesByCategory, 1)
	bucket := s.ExpensesByCategory[0]
	require.Equal(t, fb.UncategorizedName, bucket.Name)
	require.Equal(t, fb.UncategorizedColor, bucket.Color)
	require.True(t, bucket.Uncategorized)
	require.Nil(t, bucket.CategoryID)
	require.True(t, bucket.Amount.Equal(dec("25")))
	require.Equal(t, fb.ExpenseIcon, *s.Entries[0].Category.Icon)
}

func TestAggregateGroupsByCategoryName(t *testing.T) {
	food := models.Category{ID: uuid.New(), Name: "Mercado", Kind: models.Expense, Color: strp("#ff0000")}
	fun := models.Category{ID: uuid.New(), Name: "Lazer", Kind: models.Expense}
	w := MonthWindow(date(2024, 3, 1))
	txs := []models.Transaction{
		expense(&food.ID, "10", date(2024, 3, 1)),
		expense(&fun.ID, "90", date(2024, 3, 2)),
		expense(&food.ID, "20", date(2024, 3, 3)),
	}

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, nil, []models.Category{food, fun}, w, decimal.Zero)
	require.Len(t, s.ExpensesByCategory, 2)
	require.Equal(t, "Lazer", s.ExpensesByCategory[0].Name)
	require.Equal(t, "Mercado", s.ExpensesByCategory[1].Name)
	require.Equal(t, "#ff0000", s.ExpensesByCategory[1].Color)
	require.True(t, s.ExpensesByCategory[1].Amount.Equal(dec("30")))
	require.Empty(t, s.IncomesByCategory)
}

func TestAggregateRecentIsNewestFirst(t *testing.T) {
	w := MonthWindow(date(2024, 3, 1))
	var txs []models.Transaction
	for d := 1; d <= 8; d++ {
		txs = append(txs, expense(nil, "1", date(2024, 3, d)))
	}

	s := NewEngine(DefaultFallbacks()).Aggregate(txs, nil, nil, w, decimal.Zero)
	require.Len(t, s.Recent, 5)
	require.Len(t, s.Entries, 8)
	require.Equal(t, date(2024, 3, 8), s.Recent[0].Date)
	require.Equal(t, date(2024, 3, 4), s.Recent[4].Date)
}

func TestAggregateEmptyInput(t *testing.T) {
	w := MonthWindow(date(2024, 4, 15))

	s := NewEngine(DefaultFallbacks()).Aggregate(nil, nil, nil, w, decimal.Zero)
	require.True(t, s.Totals.Income.IsZero())
	require.True(t, s.Totals.Expense.IsZero())
	require.NotNil(t, s.ExpensesByCategory)
	require.NotNil(t, s.Budgets)
	require.NotNil(t, s.Recent)
	require.Len(t, s.DailyBalance, 30)
	for _, p := range s.DailyBalance {
		require.True(t, p.Balance.IsZero())
	}
}

func TestSummarizeCarriesHistoryIntoOpening(t *testing.T) {
	rule := monthly(5, date(2024, 1, 1))
	l := Ledger{
		Transactions: []models.Transaction{
			expense(nil, "300", date(2024, 2, 20)),
			income(nil, "50", date(2024, 3, 2)),
		},
		Rules: []models.RecurringTransaction{rule},
	}

	s := NewEngine(DefaultFallbacks()).Summarize(l, MonthWindow(date(2024, 3, 15)))
	// January and February salaries minus the February expense.
	require.True(t, s.Opening.Equal(dec("1700")), "got %s", s.Opening)
	require.True(t, s.Totals.Income.Equal(dec("1050")))
	require.True(t, s.DailyBalance[0].Balance.Equal(dec("1700")))
	require.True(t, s.DailyBalance[len(s.DailyBalance)-1].Balance.Equal(dec("2750")))
}

func TestWindowDays(t *testing.T) {
	require.Equal(t, 29, MonthWindow(date(2024, 2, 10)).Days())
	require.Equal(t, 31, MonthWindow(date(2024, 12, 31)).Days())
	require.Equal(t, 0, NewWindow(date(2024, 2, 2), date(2024, 2, 1)).Days())
	require.Equal(t, "2024-02", MonthWindow(date(2024, 2, 10)).Key())
}
