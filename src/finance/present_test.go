package finance

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"domus-server/src/models"
)

func TestViewsOfEmptyMonthHaveNoNulls(t *testing.T) {
	e := NewEngine(DefaultFallbacks())
	s := e.Summarize(Ledger{}, MonthWindow(date(2024, 6, 12)))

	for _, v := range []any{e.Dashboard(s), e.Transactions(s), e.Analysis(s)} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		require.NotContains(t, string(raw), "null")
	}

	tv := e.Transactions(s)
	require.Len(t, tv.DailyBalances, 30)
	require.Equal(t, "2024-06-01", tv.DailyBalances[0].Date)
	require.Equal(t, "2024-06", tv.Month)
}

func TestDashboardFallsBackToKindIcon(t *testing.T) {
	fb := DefaultFallbacks()
	e := NewEngine(fb)
	budget := decimal.NewFromInt(200)
	cat := models.Category{ID: uuid.New(), Name: "Mercado", Kind: models.Expense, Budget: &budget}
	txs := []models.Transaction{
		income(nil, "500", date(2024, 6, 1)),
		expense(&cat.ID, "50", date(2024, 6, 2)),
	}

	v := e.Dashboard(e.Aggregate(txs, nil, []models.Category{cat}, MonthWindow(date(2024, 6, 1)), decimal.Zero))
	require.True(t, v.Balance.Equal(dec("450")))
	require.Len(t, v.Recent, 2)
	require.Equal(t, "Mercado", v.Recent[0].CategoryName)
	require.Equal(t, fb.ExpenseIcon, v.Recent[0].CategoryIcon)
	require.Equal(t, fb.UncategorizedName, v.Recent[1].CategoryName)
	require.Equal(t, fb.IncomeIcon, v.Recent[1].CategoryIcon)
	require.Len(t, v.Budgets, 1)
	require.Equal(t, fb.ExpenseIcon, v.Budgets[0].Icon)
	require.Equal(t, "25", v.Budgets[0].Progress.String())
}

func TestTransactionsGroupsByDay(t *testing.T) {
	e := NewEngine(DefaultFallbacks())
	txs := []models.Transaction{
		expense(nil, "1", date(2024, 6, 3)),
		expense(nil, "2", date(2024, 6, 3)),
		income(nil, "3", date(2024, 6, 9)),
	}
	rule := monthly(3, date(2024, 1, 1))
	w := MonthWindow(date(2024, 6, 1))

	v := e.Transactions(e.Aggregate(txs, Expand([]models.RecurringTransaction{rule}, w), nil, w, decimal.Zero))
	require.Len(t, v.Days, 2)
	require.Equal(t, "2024-06-09", v.Days[0].Date)
	require.Equal(t, "2024-06-03", v.Days[1].Date)
	require.Len(t, v.Days[1].Entries, 3)

	recurring := 0
	for _, ev := range v.Days[1].Entries {
		if ev.Recurring {
			recurring++
			require.NotNil(t, ev.RuleID)
		}
	}
	require.Equal(t, 1, recurring)
}

func TestAnalysisIncludesFlow(t *testing.T) {
	e := NewEngine(DefaultFallbacks())
	txs := []models.Transaction{
		income(nil, "1000", date(2024, 6, 1)),
		expense(nil, "400", date(2024, 6, 2)),
	}

	v := e.Analysis(e.Aggregate(txs, nil, nil, MonthWindow(date(2024, 6, 1)), decimal.Zero))
	require.True(t, v.Savings.Equal(dec("600")))
	require.Len(t, v.Flow.Nodes, 5)
	require.Len(t, v.IncomeSlices, 1)
	require.Len(t, v.ExpenseSlices, 1)
}
