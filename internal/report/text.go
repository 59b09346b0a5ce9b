package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText renders r as a flat, multi-section plain-text report.
func WriteText(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	sym := r.Currency

	section := func(title string) {
		fmt.Fprintf(bw, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
	}

	fmt.Fprintln(bw, "EXPENSE & PROFIT REPORT")
	fmt.Fprintf(bw, "Branch: %s\n", r.scope())
	fmt.Fprintf(bw, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	section("OVERVIEW")
	for _, m := range summaryMetrics(r.Summary) {
		fmt.Fprintf(bw, "%-20s %s\n", m.label+":", m.format(sym))
	}

	if len(r.Branches) > 0 {
		section("BRANCH PERFORMANCE")
		for _, b := range r.Branches {
			fmt.Fprintf(bw, "%s\n", b.Branch)
			for _, m := range summaryMetrics(b.ExpenseSummary) {
				fmt.Fprintf(bw, "  %-20s %s\n", m.label+":", m.format(sym))
			}
		}
	}

	if len(r.Categories) > 0 {
		section("CATEGORY BREAKDOWN")
		for _, c := range r.Categories {
			fmt.Fprintf(bw, "%s: %d products, %d services, products %s, services %s, total %s, inventory %s\n",
				categoryLabel(c), c.ProductCount, c.ServiceCount,
				Money(sym, c.ProductsCost), Money(sym, c.ServicesCost),
				Money(sym, c.TotalCost), Money(sym, c.InventoryValue))
		}
	}

	if len(r.Monthly) > 0 {
		section("MONTHLY TRENDS")
		for _, m := range r.Monthly {
			fmt.Fprintf(bw, "%s: revenue %s, expenses %s, profit %s, margin %s\n",
				m.Month, Money(sym, m.TotalRevenue), Money(sym, m.TotalExpenses),
				Money(sym, m.TotalProfit), Percent(m.ProfitMargin))
		}
	}

	if raw := r.RawExpenses(); len(raw) > 0 {
		section("MANUAL EXPENSES")
		for _, e := range raw {
			date := "-"
			if !e.Date.IsZero() {
				date = e.Date.Format("2006-01-02")
			}
			fmt.Fprintf(bw, "%s  %-24s %-12s %-16s %s\n", date, e.Title, e.Category, e.Branch, Money(sym, e.Amount))
		}
		if len(r.Expenses) > len(raw) {
			fmt.Fprintf(bw, "(%d of %d records shown)\n", len(raw), len(r.Expenses))
		}
	}
	return bw.Flush()
}
