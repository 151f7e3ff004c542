package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"domus-server/src/models"
)

var hundred = decimal.NewFromInt(100)

type KindTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net is income minus expense.
func (t KindTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// CategoryTotal is the sum of one kind of entries sharing a category name.
type CategoryTotal struct {
	CategoryID    *uuid.UUID      `json:"category_id"`
	Name          string          `json:"name"`
	Color         string          `json:"color"`
	Amount        decimal.Decimal `json:"amount"`
	Uncategorized bool            `json:"uncategorized"`
}

type BudgetProgress struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Icon       *string         `json:"icon"`
	Color      *string         `json:"color"`
	Spent      decimal.Decimal `json:"spent"`
	Budget     decimal.Decimal `json:"budget"`
	Progress   decimal.Decimal `json:"progress"`
}

type BalancePoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type Summary struct {
	Window             Window
	Opening            decimal.Decimal
	Totals             KindTotals
	ExpensesByCategory []CategoryTotal
	IncomesByCategory  []CategoryTotal
	Budgets            []BudgetProgress
	DailyBalance       []BalancePoint
	Recent             []Entry
	Entries            []Entry
}

// Ledger is everything fetched for one household before aggregation.
type Ledger struct {
	Categories   []models.Category
	Transactions []models.Transaction
	Rules        []models.RecurringTransaction
}

// Engine computes summaries and flow graphs with a fixed set of fallbacks.
type Engine struct {
	fb Fallbacks
}

func NewEngine(fb Fallbacks) *Engine {
	return &Engine{fb: fb}
}

func (e *Engine) Fallbacks() Fallbacks {
	return e.fb
}

// Summarize aggregates w, using the whole history before w.Start as the
// opening balance of the running balance series.
func (e *Engine) Summarize(l Ledger, w Window) Summary {
	opening := decimal.Zero
	if first, ok := l.earliest(); ok && first.Before(w.Start) {
		history := Window{Start: first, End: w.Start.AddDate(0, 0, -1)}
		past := e.Aggregate(l.Transactions, Expand(l.Rules, history), l.Categories, history, decimal.Zero)
		opening = past.Totals.Net()
	}
	return e.Aggregate(l.Transactions, Expand(l.Rules, w), l.Categories, w, opening)
}

func (l Ledger) earliest() (time.Time, bool) {
	var first time.Time
	found := false
	consider := func(t time.Time) {
		t = day(t)
		if !found || t.Before(first) {
			first, found = t, true
		}
	}
	for _, t := range l.Transactions {
		consider(t.Date)
	}
	for _, r := range l.Rules {
		consider(r.StartDate)
	}
	return first, found
}

// Aggregate merges one-off transactions with materialized occurrences and
// computes every derived figure for w. Entries dated outside w are ignored.
func (e *Engine) Aggregate(oneOff []models.Transaction, occurrences []Entry, categories []models.Category, w Window, opening decimal.Decimal) Summary {
	w = NewWindow(w.Start, w.End)
	byID := make(map[uuid.UUID]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	entries := make([]Entry, 0, len(oneOff)+len(occurrences))
	for _, t := range oneOff {
		if !w.Contains(t.Date) {
			continue
		}
		entries = append(entries, Entry{
			ID:          t.ID.String(),
			Description: t.Description,
			Amount:      t.Amount,
			Kind:        t.Kind,
			Date:        day(t.Date),
			CategoryID:  t.CategoryID,
			Category:    e.resolve(t.CategoryID, t.Kind, byID),
		})
	}
	for _, o := range occurrences {
		if !w.Contains(o.Date) {
			continue
		}
		o.Date = day(o.Date)
		o.Category = e.resolve(o.CategoryID, o.Kind, byID)
		entries = append(entries, o)
	}

	s := Summary{
		Window:  w,
		Opening: opening,
		Totals:  KindTotals{Income: decimal.Zero, Expense: decimal.Zero},
	}
	for _, en := range entries {
		switch en.Kind {
		case models.Income:
			s.Totals.Income = s.Totals.Income.Add(en.Amount)
		case models.Expense:
			s.Totals.Expense = s.Totals.Expense.Add(en.Amount)
		}
	}

	s.ExpensesByCategory = e.totalsByCategory(entries, models.Expense)
	s.IncomesByCategory = e.totalsByCategory(entries, models.Income)
	s.Budgets = budgetProgress(entries, categories)
	s.DailyBalance = dailyBalance(entries, w, opening)

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
	s.Entries = entries
	n := e.fb.RecentCount
	if n > len(entries) {
		n = len(entries)
	}
	s.Recent = append([]Entry{}, entries[:n]...)

	return s
}

func (e *Engine) resolve(id *uuid.UUID, kind models.Kind, byID map[uuid.UUID]models.Category) models.Category {
	if id != nil {
		if c, ok := byID[*id]; ok {
			return c
		}
	}
	return e.uncategorized(kind)
}

func (e *Engine) uncategorized(kind models.Kind) models.Category {
	icon := e.fb.ExpenseIcon
	if kind == models.Income {
		icon = e.fb.IncomeIcon
	}
	color := e.fb.UncategorizedColor
	return models.Category{
		Name:  e.fb.UncategorizedName,
		Kind:  kind,
		Icon:  &icon,
		Color: &color,
	}
}

func (e *Engine) totalsByCategory(entries []Entry, kind models.Kind) []CategoryTotal {
	index := make(map[string]int)
	totals := []CategoryTotal{}
	for _, en := range entries {
		if en.Kind != kind {
			continue
		}
		name := en.Category.Name
		uncategorized := en.Category.ID == uuid.Nil || name == ""
		if name == "" {
			name = e.fb.UncategorizedName
		}
		i, ok := index[name]
		if !ok {
			color := e.fb.UncategorizedColor
			if en.Category.Color != nil && *en.Category.Color != "" {
				color = *en.Category.Color
			}
			var id *uuid.UUID
			if en.Category.ID != uuid.Nil {
				cid := en.Category.ID
				id = &cid
			}
			i = len(totals)
			index[name] = i
			totals = append(totals, CategoryTotal{
				CategoryID:    id,
				Name:          name,
				Color:         color,
				Amount:        decimal.Zero,
				Uncategorized: uncategorized,
			})
		}
		totals[i].Amount = totals[i].Amount.Add(en.Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Amount.Cmp(totals[j].Amount); c != 0 {
			return c > 0
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

func budgetProgress(entries []Entry, categories []models.Category) []BudgetProgress {
	spent := make(map[uuid.UUID]decimal.Decimal)
	for _, en := range entries {
		if en.Kind == models.Expense && en.CategoryID != nil {
			spent[*en.CategoryID] = spent[*en.CategoryID].Add(en.Amount)
		}
	}

	out := []BudgetProgress{}
	for _, c := range categories {
		if c.Kind != models.Expense || c.Budget == nil || !c.Budget.IsPositive() {
			continue
		}
		s := spent[c.ID]
		progress := s.Div(*c.Budget).Mul(hundred)
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
		out = append(out, BudgetProgress{
			CategoryID: c.ID,
			Name:       c.Name,
			Icon:       c.Icon,
			Color:      c.Color,
			Spent:      s,
			Budget:     *c.Budget,
			Progress:   progress.Round(2),
		})
	}
	return out
}

func dailyBalance(entries []Entry, w Window, opening decimal.Decimal) []BalancePoint {
	net := make(map[string]decimal.Decimal)
	for _, en := range entries {
		key := en.Date.Format(time.DateOnly)
		switch en.Kind {
		case models.Income:
			net[key] = net[key].Add(en.Amount)
		case models.Expense:
			net[key] = net[key].Sub(en.Amount)
		}
	}

	points := make([]BalancePoint, 0, w.Days())
	running := opening
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		running = running.Add(net[d.Format(time.DateOnly)])
		points = append(points, BalancePoint{Date: d, Balance: running})
	}
	return points
}
