// Package rollup computes the dashboard aggregates from materialised
// collections. Every function here is pure; rounding is left to the report
// package.
package rollup

import (
	"sort"
	"strings"
	"time"

	"salonhub-backend/internal/domain"
)

const (
	// ServiceCostRate is the assumed cost of delivering a service, as a
	// share of its list price.
	ServiceCostRate = 0.30
	// AppointmentCostRate is the assumed cost of a completed appointment,
	// as a share of its amount.
	AppointmentCostRate = 0.40

	AllBranches = "all"
)

// Input is the materialised data a rollup runs over.
type Input struct {
	Products []domain.Product
	Services []domain.Service
	Bookings []domain.Booking
	Expenses []domain.ManualExpense
}

// ExpenseSummary is the expense/profit aggregate for one scope.
type ExpenseSummary struct {
	ProductsCost        float64 `json:"productsCost"`
	ServicesCost        float64 `json:"servicesCost"`
	AppointmentsCost    float64 `json:"appointmentsCost"`
	ManualExpensesTotal float64 `json:"manualExpensesTotal"`
	TotalExpenses       float64 `json:"totalExpenses"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalProfit         float64 `json:"totalProfit"`
	ProfitMargin        float64 `json:"profitMargin"`
}

type MonthlySummary struct {
	Month string    `json:"month"`
	Start time.Time `json:"start"`
	ExpenseSummary
}

type BranchSummary struct {
	Branch string `json:"branch"`
	ExpenseSummary
}

type CategorySummary struct {
	Category       string  `json:"category"`
	ProductCount   int     `json:"productCount"`
	ServiceCount   int     `json:"serviceCount"`
	ProductsCost   float64 `json:"productsCost"`
	ServicesCost   float64 `json:"servicesCost"`
	TotalCost      float64 `json:"totalCost"`
	InventoryValue float64 `json:"inventoryValue"`
}

// IsCompleted compares booking status case-insensitively.
func IsCompleted(status domain.BookingStatus) bool {
	return strings.EqualFold(strings.TrimSpace(string(status)), string(domain.BookingCompleted))
}

func scoped(branch string) bool {
	b := strings.TrimSpace(branch)
	return b != "" && !strings.EqualFold(b, AllBranches)
}

func hasBranch(names []string, branch string) bool {
	for _, n := range names {
		if n == branch {
			return true
		}
	}
	return false
}

// Filter narrows in to branch. "all" or an empty branch keeps everything.
func Filter(in Input, branch string) Input {
	branch = strings.TrimSpace(branch)
	if !scoped(branch) {
		return in
	}
	var out Input
	for _, p := range in.Products {
		if hasBranch(p.BranchNames, branch) {
			out.Products = append(out.Products, p)
		}
	}
	for _, s := range in.Services {
		if hasBranch(s.BranchNames, branch) {
			out.Services = append(out.Services, s)
		}
	}
	for _, b := range in.Bookings {
		if b.Branch == branch {
			out.Bookings = append(out.Bookings, b)
		}
	}
	for _, e := range in.Expenses {
		if e.Branch == branch {
			out.Expenses = append(out.Expenses, e)
		}
	}
	return out
}

func productsCost(products []domain.Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Cost * float64(p.Stock)
	}
	return total
}

func servicesCost(services []domain.Service) float64 {
	var total float64
	for _, s := range services {
		total += s.Price * ServiceCostRate
	}
	return total
}

func completedRevenue(bookings []domain.Booking) float64 {
	var total float64
	for _, b := range bookings {
		if IsCompleted(b.Status) {
			total += b.TotalAmount
		}
	}
	return total
}

func expensesTotal(expenses []domain.ManualExpense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

func summarise(products, services, revenue, manual float64) ExpenseSummary {
	s := ExpenseSummary{
		ProductsCost:        products,
		ServicesCost:        services,
		AppointmentsCost:    revenue * AppointmentCostRate,
		ManualExpensesTotal: manual,
		TotalRevenue:        revenue,
	}
	s.TotalExpenses = s.ProductsCost + s.ServicesCost + s.AppointmentsCost + s.ManualExpensesTotal
	s.TotalProfit = s.TotalRevenue - s.TotalExpenses
	s.ProfitMargin = Margin(s.TotalProfit, s.TotalRevenue)
	return s
}

// Margin is profit as a percentage of revenue, 0 when there is no revenue.
func Margin(profit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / revenue * 100
}

// Compute returns the expense summary for branch.
func Compute(in Input, branch string) ExpenseSummary {
	f := Filter(in, branch)
	return summarise(
		productsCost(f.Products),
		servicesCost(f.Services),
		completedRevenue(f.Bookings),
		expensesTotal(f.Expenses),
	)
}

// Monthly returns twelve buckets for year. Bookings and expenses are placed
// by date; records whose date could not be parsed fall in no bucket.
// Product and service costs are not dated and are spread evenly.
func Monthly(in Input, branch string, year int) []MonthlySummary {
	f := Filter(in, branch)
	monthlyProducts := productsCost(f.Products) / 12
	monthlyServices := servicesCost(f.Services) / 12

	out := make([]MonthlySummary, 0, 12)
	for m := time.January; m <= time.December; m++ {
		start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

		var bookings []domain.Booking
		for _, b := range f.Bookings {
			if within(b.Date, start, end) {
				bookings = append(bookings, b)
			}
		}
		var expenses []domain.ManualExpense
		for _, e := range f.Expenses {
			if within(e.Date, start, end) {
				expenses = append(expenses, e)
			}
		}
		out = append(out, MonthlySummary{
			Month:          start.Format("Jan"),
			Start:          start,
			ExpenseSummary: summarise(monthlyProducts, monthlyServices, completedRevenue(bookings), expensesTotal(expenses)),
		})
	}
	return out
}

func within(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.UTC()
	return !t.Before(start) && !t.After(end)
}

// ByBranch computes one summary per branch, in the order given.
func ByBranch(in Input, branches []string) []BranchSummary {
	out := make([]BranchSummary, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchSummary{Branch: b, ExpenseSummary: Compute(in, b)})
	}
	return out
}

// Branches lists every branch name referenced by in, sorted.
func Branches(in Input) []string {
	seen := make(map[string]struct{})
	add := func(name string) {
		if name = strings.TrimSpace(name); name != "" {
			seen[name] = struct{}{}
		}
	}
	for _, p := range in.Products {
		for _, n := range p.BranchNames {
			add(n)
		}
	}
	for _, s := range in.Services {
		for _, n := range s.BranchNames {
			add(n)
		}
	}
	for _, b := range in.Bookings {
		add(b.Branch)
	}
	for _, e := range in.Expenses {
		add(e.Branch)
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ByCategory groups products and services of branch by category.
func ByCategory(in Input, branch string) []CategorySummary {
	f := Filter(in, branch)
	idx := make(map[string]*CategorySummary)
	get := func(name string) *CategorySummary {
		c, ok := idx[name]
		if !ok {
			c = &CategorySummary{Category: name}
			idx[name] = c
		}
		return c
	}
	for _, p := range f.Products {
		c := get(p.Category)
		c.ProductCount++
		c.ProductsCost += p.Cost * float64(p.Stock)
		c.InventoryValue += p.Price * float64(p.Stock)
	}
	for _, s := range f.Services {
		c := get(s.Category)
		c.ServiceCount++
		c.ServicesCost += s.Price * ServiceCostRate
	}
	out := make([]CategorySummary, 0, len(idx))
	for _, c := range idx {
		c.TotalCost = c.ProductsCost + c.ServicesCost
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost > out[j].TotalCost
		}
		return out[i].Category < out[j].Category
	})
	return out
}
