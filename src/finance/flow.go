package finance

import "github.com/shopspring/decimal"

type FlowNode struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FlowLink is a directed edge between two node indices.
type FlowLink struct {
	Source int             `json:"source"`
	Target int             `json:"target"`
	Value  decimal.Decimal `json:"value"`
}

type Flow struct {
	Nodes []FlowNode `json:"nodes"`
	Links []FlowLink `json:"links"`
}

type flowBuilder struct {
	flow  Flow
	index map[string]int
	links map[[2]int]int
}

func newFlowBuilder() *flowBuilder {
	return &flowBuilder{
		flow:  Flow{Nodes: []FlowNode{}, Links: []FlowLink{}},
		index: make(map[string]int),
		links: make(map[[2]int]int),
	}
}

// node registers name once and returns its index. The first color wins.
func (b *flowBuilder) node(name, color string) int {
	if i, ok := b.index[name]; ok {
		return i
	}
	i := len(b.flow.Nodes)
	b.index[name] = i
	b.flow.Nodes = append(b.flow.Nodes, FlowNode{Name: name, Color: color})
	return i
}

func (b *flowBuilder) link(source, target int, value decimal.Decimal) {
	if !value.IsPositive() || source == target {
		return
	}
	key := [2]int{source, target}
	if i, ok := b.links[key]; ok {
		b.flow.Links[i].Value = b.flow.Links[i].Value.Add(value)
		return
	}
	b.links[key] = len(b.flow.Links)
	b.flow.Links = append(b.flow.Links, FlowLink{Source: source, Target: target, Value: value})
}

// BuildFlow turns category totals into the money flow graph: income sources
// feed gross income, which splits into savings and total expenses, which in
// turn fans out to the expense categories. No income means no graph.
func (e *Engine) BuildFlow(incomes, expenses []CategoryTotal) Flow {
	totalIncome, totalExpense := decimal.Zero, decimal.Zero
	for _, c := range incomes {
		if c.Amount.IsPositive() {
			totalIncome = totalIncome.Add(c.Amount)
		}
	}
	for _, c := range expenses {
		if c.Amount.IsPositive() {
			totalExpense = totalExpense.Add(c.Amount)
		}
	}

	b := newFlowBuilder()
	if !totalIncome.IsPositive() {
		return b.flow
	}

	type source struct {
		idx    int
		amount decimal.Decimal
	}
	var sources []source
	for _, c := range incomes {
		if !c.Amount.IsPositive() {
			continue
		}
		style := e.label(c, e.fb.OtherIncomes)
		sources = append(sources, source{b.node(style.Name, style.Color), c.Amount})
	}

	gross := b.node(e.fb.GrossIncome.Name, e.fb.GrossIncome.Color)
	for _, s := range sources {
		b.link(s.idx, gross, s.amount)
	}

	savings := totalIncome.Sub(totalExpense)
	if savings.IsPositive() {
		b.link(gross, b.node(e.fb.Savings.Name, e.fb.Savings.Color), savings)
	}

	if !totalExpense.IsPositive() {
		return b.flow
	}
	spent := b.node(e.fb.TotalExpenses.Name, e.fb.TotalExpenses.Color)
	b.link(gross, spent, totalExpense)
	for _, c := range expenses {
		if !c.Amount.IsPositive() {
			continue
		}
		style := e.label(c, e.fb.OtherExpenses)
		b.link(spent, b.node(style.Name, style.Color), c.Amount)
	}
	return b.flow
}

func (e *Engine) label(c CategoryTotal, other NodeStyle) NodeStyle {
	if c.Uncategorized || c.Name == "" {
		return other
	}
	color := c.Color
	if color == "" {
		color = e.fb.UncategorizedColor
	}
	return NodeStyle{Name: c.Name, Color: color}
}
