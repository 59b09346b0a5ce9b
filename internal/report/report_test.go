package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/rollup"
)

func sampleReport(expenses int) Report {
	in := rollup.Input{
		Products: []domain.Product{{Cost: 10, Stock: 5, Category: "Hair", BranchNames: []string{"Downtown"}}, {Cost: 20, Stock: 2, Category: "Skin", BranchNames: []string{"Uptown"}}},
		Services: []domain.Service{{Price: 33.33, Category: "Spa", BranchNames: []string{"Uptown"}}},
		Bookings: []domain.Booking{{TotalAmount: 100, Status: "Completed", Branch: "Downtown", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}},
	}
	for i := 0; i < expenses; i++ {
		in.Expenses = append(in.Expenses, domain.ManualExpense{
			ID:       fmt.Sprintf("e%d", i),
			Title:    "Supplies",
			Amount:   0.05,
			Category: "supplies",
			Branch:   "Downtown",
			Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return Report{
		Currency:    "₹",
		GeneratedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Summary:     rollup.Compute(in, "all"),
		Branches:    rollup.ByBranch(in, rollup.Branches(in)),
		Categories:  rollup.ByCategory(in, "all"),
		Monthly:     rollup.Monthly(in, "all", 2025),
		Expenses:    in.Expenses,
	}
}

func expectedValues(r Report) []string {
	s := r.Summary
	return []string{
		Money(r.Currency, s.ProductsCost),
		Money(r.Currency, s.ServicesCost),
		Money(r.Currency, s.AppointmentsCost),
		Money(r.Currency, s.ManualExpensesTotal),
		Money(r.Currency, s.TotalExpenses),
		Money(r.Currency, s.TotalRevenue),
		Money(r.Currency, s.TotalProfit),
		Percent(s.ProfitMargin),
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₹90.00", Money("₹", 90))
	assert.Equal(t, "-₹80.00", Money("₹", -80))
	assert.Equal(t, "$0.10", Money("$", 0.1+0.0000001))
	assert.Equal(t, "-80.00%", Percent(-80))
	assert.Equal(t, 10.0, Round(9.999))
}

func TestWriteTextContainsEverySummaryField(t *testing.T) {
	r := sampleReport(3)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	for _, want := range expectedValues(r) {
		assert.Contains(t, out, want)
	}
	for _, section := range []string{"OVERVIEW", "BRANCH PERFORMANCE", "CATEGORY BREAKDOWN", "MONTHLY TRENDS", "MANUAL EXPENSES"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Branch: all")
}

func TestWriteXLSXSheetsAndValues(t *testing.T) {
	r := sampleReport(MaxRawRows + 25)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetOverview, SheetBranches, SheetMonthly, SheetExpenses}, f.GetSheetList())

	rows, err := f.GetRows(SheetOverview)
	require.NoError(t, err)
	var formatted []string
	for _, row := range rows {
		if len(row) >= 3 {
			formatted = append(formatted, row[2])
		}
	}
	for _, want := range expectedValues(r) {
		assert.Contains(t, formatted, want)
	}

	expenseRows, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	assert.Len(t, expenseRows, MaxRawRows+1)
	assert.Equal(t, "ID", expenseRows[0][0])

	monthly, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Len(t, monthly, 13)
	assert.Equal(t, "Feb", monthly[2][0])

	branches, err := f.GetRows(SheetBranches)
	require.NoError(t, err)
	assert.Len(t, branches, 3)
}

func TestWriteTextTruncatesRawRecords(t *testing.T) {
	r := sampleReport(MaxRawRows + 1)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), fmt.Sprintf("(%d of %d records shown)", MaxRawRows, MaxRawRows+1))
	assert.Len(t, r.RawExpenses(), MaxRawRows)
}

func TestWriteCSV(t *testing.T) {
	r := sampleReport(2)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 14)
	total := records[13]
	assert.Equal(t, "total", total[0])
	assert.Equal(t, Amount(r.Summary.TotalExpenses), total[5])
	assert.Equal(t, Amount(r.Summary.ProfitMargin), total[8])
}

func TestBuildCharts(t *testing.T) {
	r := sampleReport(1)
	c := BuildCharts(r)
	require.Len(t, c.ExpenseBreakdown, 4)
	assert.Equal(t, 90.0, c.ExpenseBreakdown[0].Value)
	assert.Equal(t, 10.0, c.ExpenseBreakdown[1].Value)
	assert.Len(t, c.Monthly, 12)
	assert.Equal(t, 100.0, c.Monthly[1].Revenue)
	assert.Len(t, c.Branches, 2)
	assert.Len(t, c.Categories, 3)
}
