package report

import "salonhub-backend/internal/rollup"

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type MonthlyPoint struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type BranchPoint struct {
	Branch   string  `json:"branch"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

// Charts holds the arrays the dashboard plots directly.
type Charts struct {
	ExpenseBreakdown []Slice        `json:"expenseBreakdown"`
	Monthly          []MonthlyPoint `json:"monthly"`
	Branches         []BranchPoint  `json:"branches"`
	Categories       []Slice        `json:"categories"`
}

// BuildCharts shapes r for charting. Values are rounded to two decimals.
func BuildCharts(r Report) Charts {
	c := Charts{
		ExpenseBreakdown: []Slice{
			{Label: "Products", Value: Round(r.Summary.ProductsCost)},
			{Label: "Services", Value: Round(r.Summary.ServicesCost)},
			{Label: "Appointments", Value: Round(r.Summary.AppointmentsCost)},
			{Label: "Manual", Value: Round(r.Summary.ManualExpensesTotal)},
		},
		Monthly:    make([]MonthlyPoint, 0, len(r.Monthly)),
		Branches:   make([]BranchPoint, 0, len(r.Branches)),
		Categories: make([]Slice, 0, len(r.Categories)),
	}
	for _, m := range r.Monthly {
		c.Monthly = append(c.Monthly, MonthlyPoint{
			Month:    m.Month,
			Revenue:  Round(m.TotalRevenue),
			Expenses: Round(m.TotalExpenses),
			Profit:   Round(m.TotalProfit),
		})
	}
	for _, b := range r.Branches {
		c.Branches = append(c.Branches, BranchPoint{
			Branch:   b.Branch,
			Revenue:  Round(b.TotalRevenue),
			Expenses: Round(b.TotalExpenses),
			Profit:   Round(b.TotalProfit),
			Margin:   Round(b.ProfitMargin),
		})
	}
	for _, cat := range r.Categories {
		c.Categories = append(c.Categories, Slice{Label: categoryLabel(cat), Value: Round(cat.TotalCost)})
	}
	return c
}

func categoryLabel(c rollup.CategorySummary) string {
	if c.Category == "" {
		return "Uncategorized"
	}
	return c.Category
}
