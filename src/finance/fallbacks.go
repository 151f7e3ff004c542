package finance

// NodeStyle is the label and color of a fixed flow graph node.
type NodeStyle struct {
	Name  string
	Color string
}

// Fallbacks holds every default name, color and icon used when a row has no
// category (or the category lacks a field), plus the fixed flow graph nodes.
type Fallbacks struct {
	UncategorizedName  string
	UncategorizedColor string
	IncomeIcon         string
	ExpenseIcon        string

	GrossIncome   NodeStyle
	TotalExpenses NodeStyle
	Savings       NodeStyle
	OtherIncomes  NodeStyle
	OtherExpenses NodeStyle

	RecentCount int
}

func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		UncategorizedName:  "Sem Categoria",
		UncategorizedColor: "#8884d8",
		IncomeIcon:         "💰",
		ExpenseIcon:        "💸",

		GrossIncome:   NodeStyle{Name: "Receita Bruta", Color: "#22c55e"},
		TotalExpenses: NodeStyle{Name: "Despesas Totais", Color: "#ef4444"},
		Savings:       NodeStyle{Name: "Sobra do Mês", Color: "#8884d8"},
		OtherIncomes:  NodeStyle{Name: "Outras Receitas", Color: "#82ca9d"},
		OtherExpenses: NodeStyle{Name: "Outras Despesas", Color: "#ff8042"},

		RecentCount: 5,
	}
}
