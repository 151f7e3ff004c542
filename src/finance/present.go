package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"domus-server/src/models"
)

// EntryView is one ledger line as rendered in lists.
type EntryView struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          models.Kind     `json:"kind"`
	Date          string          `json:"date"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	CategoryIcon  string          `json:"category_icon"`
	CategoryColor string          `json:"category_color"`
	Recurring     bool            `json:"recurring"`
	RuleID        *uuid.UUID      `json:"rule_id,omitempty"`
}

type ChartSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

type BudgetView struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
	Spent    decimal.Decimal `json:"spent"`
	Budget   decimal.Decimal `json:"budget"`
	Progress decimal.Decimal `json:"progress"`
}

type BalanceView struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type DashboardView struct {
	Month         string          `json:"month"`
	TotalIncomes  decimal.Decimal `json:"total_incomes"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
	ChartData     []ChartSlice    `json:"chart_data"`
	Budgets       []BudgetView    `json:"budgets"`
	Recent        []EntryView     `json:"recent_transactions"`
}

// DayGroup is every entry of one day, newest day first.
type DayGroup struct {
	Date    string      `json:"date"`
	Entries []EntryView `json:"entries"`
}

type TransactionsView struct {
	Month         string          `json:"month"`
	Opening       decimal.Decimal `json:"opening_balance"`
	TotalIncomes  decimal.Decimal `json:"total_incomes"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	DailyBalances []BalanceView   `json:"daily_balances"`
	Days          []DayGroup      `json:"days"`
}

type AnalysisView struct {
	Month         string          `json:"month"`
	TotalIncomes  decimal.Decimal `json:"total_incomes"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Savings       decimal.Decimal `json:"savings"`
	IncomeSlices  []ChartSlice    `json:"incomes_by_category"`
	ExpenseSlices []ChartSlice    `json:"expenses_by_category"`
	Flow          Flow            `json:"flow"`
}

func (e *Engine) Dashboard(s Summary) DashboardView {
	v := DashboardView{
		Month:         s.Window.Key(),
		TotalIncomes:  s.Totals.Income,
		TotalExpenses: s.Totals.Expense,
		Balance:       s.Totals.Net(),
		ChartData:     chartSlices(s.ExpensesByCategory),
		Budgets:       make([]BudgetView, 0, len(s.Budgets)),
		Recent:        e.entries(s.Recent),
	}
	for _, b := range s.Budgets {
		v.Budgets = append(v.Budgets, BudgetView{
			ID:       b.CategoryID,
			Name:     b.Name,
			Icon:     or(b.Icon, e.fb.ExpenseIcon),
			Color:    or(b.Color, e.fb.UncategorizedColor),
			Spent:    b.Spent,
			Budget:   b.Budget,
			Progress: b.Progress,
		})
	}
	return v
}

func (e *Engine) Transactions(s Summary) TransactionsView {
	v := TransactionsView{
		Month:         s.Window.Key(),
		Opening:       s.Opening,
		TotalIncomes:  s.Totals.Income,
		TotalExpenses: s.Totals.Expense,
		DailyBalances: make([]BalanceView, 0, len(s.DailyBalance)),
		Days:          []DayGroup{},
	}
	for _, p := range s.DailyBalance {
		v.DailyBalances = append(v.DailyBalances, BalanceView{Date: p.Date.Format(time.DateOnly), Balance: p.Balance})
	}
	// Entries are already sorted newest first, so groups come out in order.
	for _, ev := range e.entries(s.Entries) {
		n := len(v.Days)
		if n == 0 || v.Days[n-1].Date != ev.Date {
			v.Days = append(v.Days, DayGroup{Date: ev.Date, Entries: []EntryView{}})
			n++
		}
		v.Days[n-1].Entries = append(v.Days[n-1].Entries, ev)
	}
	return v
}

func (e *Engine) Analysis(s Summary) AnalysisView {
	return AnalysisView{
		Month:         s.Window.Key(),
		TotalIncomes:  s.Totals.Income,
		TotalExpenses: s.Totals.Expense,
		Savings:       s.Totals.Net(),
		IncomeSlices:  chartSlices(s.IncomesByCategory),
		ExpenseSlices: chartSlices(s.ExpensesByCategory),
		Flow:          e.BuildFlow(s.IncomesByCategory, s.ExpensesByCategory),
	}
}

func (e *Engine) entries(in []Entry) []EntryView {
	out := make([]EntryView, 0, len(in))
	for _, en := range in {
		icon := e.fb.ExpenseIcon
		if en.Kind == models.Income {
			icon = e.fb.IncomeIcon
		}
		name := en.Category.Name
		if name == "" {
			name = e.fb.UncategorizedName
		}
		out = append(out, EntryView{
			ID:            en.ID,
			Description:   en.Description,
			Amount:        en.Amount,
			Kind:          en.Kind,
			Date:          en.Date.Format(time.DateOnly),
			CategoryID:    en.CategoryID,
			CategoryName:  name,
			CategoryIcon:  or(en.Category.Icon, icon),
			CategoryColor: or(en.Category.Color, e.fb.UncategorizedColor),
			Recurring:     en.Recurring,
			RuleID:        en.RuleID,
		})
	}
	return out
}

func chartSlices(totals []CategoryTotal) []ChartSlice {
	out := make([]ChartSlice, 0, len(totals))
	for _, t := range totals {
		out = append(out, ChartSlice{Name: t.Name, Value: t.Amount, Color: t.Color})
	}
	return out
}

func or(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
