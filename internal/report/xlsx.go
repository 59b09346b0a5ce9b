package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetOverview = "Overview"
	SheetBranches = "Branch Performance"
	SheetMonthly  = "Monthly Trends"
	SheetExpenses = "Expenses"
)

// WriteXLSX renders r as a workbook with one sheet per logical report.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sym := r.Currency
	overview := [][]any{
		{"Branch", r.scope(), ""},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05"), ""},
	}
	for _, m := range summaryMetrics(r.Summary) {
		overview = append(overview, []any{m.label, Round(m.value), m.format(sym)})
	}
	overview = append(overview, []any{"Expense Records", len(r.Expenses), fmt.Sprintf("%d exported", len(r.RawExpenses()))})

	branches := make([][]any, 0, len(r.Branches))
	for _, b := range r.Branches {
		branches = append(branches, []any{
			b.Branch,
			Round(b.ProductsCost), Round(b.ServicesCost), Round(b.AppointmentsCost), Round(b.ManualExpensesTotal),
			Round(b.TotalExpenses), Round(b.TotalRevenue), Round(b.TotalProfit), Round(b.ProfitMargin),
		})
	}

	monthly := make([][]any, 0, len(r.Monthly))
	for _, m := range r.Monthly {
		monthly = append(monthly, []any{
			m.Month,
			Round(m.ProductsCost), Round(m.ServicesCost), Round(m.AppointmentsCost), Round(m.ManualExpensesTotal),
			Round(m.TotalExpenses), Round(m.TotalRevenue), Round(m.TotalProfit), Round(m.ProfitMargin),
		})
	}

	raw := r.RawExpenses()
	expenses := make([][]any, 0, len(raw))
	for _, e := range raw {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format("2006-01-02")
		}
		expenses = append(expenses, []any{
			e.ID, date, e.Title, e.Category, e.Branch, Round(e.Amount), string(e.Status), e.PaymentMethod,
		})
	}

	summaryHeader := []string{"Products Cost", "Services Cost", "Appointments Cost", "Manual Expenses", "Total Expenses", "Total Revenue", "Total Profit", "Profit Margin %"}
	sheets := []struct {
		name   string
		header []string
		rows   [][]any
		widths []float64
	}{
		{SheetOverview, []string{"Metric", "Value", "Formatted"}, overview, []float64{22, 16, 20}},
		{SheetBranches, append([]string{"Branch"}, summaryHeader...), branches, []float64{24, 16, 16, 18, 18, 16, 16, 16, 16}},
		{SheetMonthly, append([]string{"Month"}, summaryHeader...), monthly, []float64{10, 16, 16, 18, 18, 16, 16, 16, 16}},
		{SheetExpenses, []string{"ID", "Date", "Title", "Category", "Branch", "Amount", "Status", "Payment Method"}, expenses, []float64{24, 12, 28, 14, 20, 14, 12, 16}},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s.name, s.header, s.rows, s.widths, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, widths []float64, headerStyle int) error {
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
	}
	for r, values := range rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, r+1, err)
			}
		}
	}
	for c, width := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, col, col, width)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
