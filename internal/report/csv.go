package report

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders the monthly trends of r, followed by a totals row.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "products_cost", "services_cost", "appointments_cost", "manual_expenses", "total_expenses", "total_revenue", "total_profit", "profit_margin"})
	for _, m := range r.Monthly {
		_ = cw.Write([]string{
			m.Month,
			Amount(m.ProductsCost),
			Amount(m.ServicesCost),
			Amount(m.AppointmentsCost),
			Amount(m.ManualExpensesTotal),
			Amount(m.TotalExpenses),
			Amount(m.TotalRevenue),
			Amount(m.TotalProfit),
			Amount(m.ProfitMargin),
		})
	}
	s := r.Summary
	_ = cw.Write([]string{
		"total",
		Amount(s.ProductsCost),
		Amount(s.ServicesCost),
		Amount(s.AppointmentsCost),
		Amount(s.ManualExpensesTotal),
		Amount(s.TotalExpenses),
		Amount(s.TotalRevenue),
		Amount(s.TotalProfit),
		Amount(s.ProfitMargin),
	})
	cw.Flush()
	return cw.Error()
}
