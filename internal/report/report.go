// Package report shapes rollup results for charts and renders them as text,
// CSV and XLSX exports.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/rollup"
)

// MaxRawRows caps the raw expense records written to exports.
const MaxRawRows = 1000

// Report is everything an export renders.
type Report struct {
	Branch      string
	Currency    string
	GeneratedAt time.Time
	Summary     rollup.ExpenseSummary
	Branches    []rollup.BranchSummary
	Categories  []rollup.CategorySummary
	Monthly     []rollup.MonthlySummary
	Expenses    []domain.ManualExpense
}

// RawExpenses returns at most MaxRawRows expense records.
func (r Report) RawExpenses() []domain.ManualExpense {
	if len(r.Expenses) > MaxRawRows {
		return r.Expenses[:MaxRawRows]
	}
	return r.Expenses
}

func (r Report) scope() string {
	if r.Branch == "" {
		return rollup.AllBranches
	}
	return r.Branch
}

// Round returns v rounded half away from zero to two decimals.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Amount renders v with two fixed decimals and no symbol.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Money renders v as currency, e.g. "₹1250.50" or "-₹80.00".
func Money(symbol string, v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-" + symbol + d.Neg().StringFixed(2)
	}
	return symbol + d.StringFixed(2)
}

// Percent renders v as "12.34%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

type metric struct {
	label   string
	value   float64
	percent bool
}

// summaryMetrics lists every field of an expense summary in export order.
func summaryMetrics(s rollup.ExpenseSummary) []metric {
	return []metric{
		{label: "Products Cost", value: s.ProductsCost},
		{label: "Services Cost", value: s.ServicesCost},
		{label: "Appointments Cost", value: s.AppointmentsCost},
		{label: "Manual Expenses", value: s.ManualExpensesTotal},
		{label: "Total Expenses", value: s.TotalExpenses},
		{label: "Total Revenue", value: s.TotalRevenue},
		{label: "Total Profit", value: s.TotalProfit},
		{label: "Profit Margin", value: s.ProfitMargin, percent: true},
	}
}

func (m metric) format(symbol string) string {
	if m.percent {
		return Percent(m.value)
	}
	return Money(symbol, m.value)
}
