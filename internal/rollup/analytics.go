package rollup

import (
	"sort"
	"strings"
	"time"

	"salonhub-backend/internal/domain"
)

const (
	dayKey   = "2006-01-02"
	monthKey = "2006-01"
)

// SeriesPoint is one bucket of the analytics time series.
type SeriesPoint struct {
	Key      string  `json:"key"`
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
	Orders   int     `json:"orders"`
}

// AnalyticsSummary covers lifetime totals over bookings and orders.
type AnalyticsSummary struct {
	TotalRevenue      float64       `json:"totalRevenue"`
	BookingRevenue    float64       `json:"bookingRevenue"`
	OrderRevenue      float64       `json:"orderRevenue"`
	TotalBookings     int           `json:"totalBookings"`
	CompletedBookings int           `json:"completedBookings"`
	CancelledBookings int           `json:"cancelledBookings"`
	TotalOrders       int           `json:"totalOrders"`
	CompletedOrders   int           `json:"completedOrders"`
	UniqueCustomers   int           `json:"uniqueCustomers"`
	AverageTicket     float64       `json:"averageTicket"`
	RevenueGrowth     float64       `json:"revenueGrowth"`
	Daily             []SeriesPoint `json:"daily"`
	Monthly           []SeriesPoint `json:"monthly"`
}

func orderCompleted(status domain.OrderStatus) bool {
	return strings.EqualFold(strings.TrimSpace(string(status)), string(domain.OrderCompleted))
}

func bookingCancelled(status domain.BookingStatus) bool {
	return strings.EqualFold(strings.TrimSpace(string(status)), string(domain.BookingCancelled))
}

// Analytics unions bookings and orders into totals and daily/monthly series.
// Only completed bookings and completed orders earn revenue. RevenueGrowth
// compares the calendar month of now with the month before it.
func Analytics(bookings []domain.Booking, orders []domain.Order, now time.Time) AnalyticsSummary {
	var s AnalyticsSummary
	daily := make(map[string]*SeriesPoint)
	monthly := make(map[string]*SeriesPoint)
	customers := make(map[string]struct{})

	bucket := func(idx map[string]*SeriesPoint, key string) *SeriesPoint {
		p, ok := idx[key]
		if !ok {
			p = &SeriesPoint{Key: key}
			idx[key] = p
		}
		return p
	}
	record := func(t time.Time, revenue float64, booking bool) {
		if t.IsZero() {
			return
		}
		t = t.UTC()
		for _, p := range []*SeriesPoint{bucket(daily, t.Format(dayKey)), bucket(monthly, t.Format(monthKey))} {
			p.Revenue += revenue
			if booking {
				p.Bookings++
			} else {
				p.Orders++
			}
		}
	}
	addCustomer := func(name string) {
		if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
			customers[key] = struct{}{}
		}
	}

	paid := 0
	for _, b := range bookings {
		s.TotalBookings++
		addCustomer(b.CustomerName)
		var revenue float64
		switch {
		case IsCompleted(b.Status):
			s.CompletedBookings++
			revenue = b.TotalAmount
			s.BookingRevenue += revenue
			paid++
		case bookingCancelled(b.Status):
			s.CancelledBookings++
		}
		record(b.Date, revenue, true)
	}
	for _, o := range orders {
		s.TotalOrders++
		addCustomer(o.CustomerName)
		var revenue float64
		if orderCompleted(o.Status) {
			s.CompletedOrders++
			revenue = o.TotalAmount
			s.OrderRevenue += revenue
			paid++
		}
		record(o.OrderDate, revenue, false)
	}

	s.TotalRevenue = s.BookingRevenue + s.OrderRevenue
	s.UniqueCustomers = len(customers)
	if paid > 0 {
		s.AverageTicket = s.TotalRevenue / float64(paid)
	}
	s.Daily = sortedSeries(daily)
	s.Monthly = sortedSeries(monthly)

	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var thisMonth, lastMonth float64
	if p, ok := monthly[current.Format(monthKey)]; ok {
		thisMonth = p.Revenue
	}
	if p, ok := monthly[current.AddDate(0, -1, 0).Format(monthKey)]; ok {
		lastMonth = p.Revenue
	}
	s.RevenueGrowth = Growth(thisMonth, lastMonth)
	return s
}

// Growth is the percentage change from previous to current, 0 when there
// is no previous value to compare against.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func sortedSeries(idx map[string]*SeriesPoint) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(idx))
	for _, p := range idx {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
