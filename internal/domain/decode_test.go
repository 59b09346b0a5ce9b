package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProductDefaults(t *testing.T) {
	p := DecodeProduct("p1", map[string]any{})
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 0.0, p.Price)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, "Uncategorized", p.Category)
	assert.Empty(t, p.BranchNames)
}

func TestDecodeProductClampsNegativeValues(t *testing.T) {
	p := DecodeProduct("p1", map[string]any{
		"price":       int64(-5),
		"cost":        -1.5,
		"stock":       int64(-3),
		"branchNames": []any{"Downtown", 42, "Uptown"},
	})
	assert.Equal(t, 0.0, p.Price)
	assert.Equal(t, 0.0, p.Cost)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, []string{"Downtown", "Uptown"}, p.BranchNames)
}

func TestDecodeBookingFallsBackToServicePrice(t *testing.T) {
	b := DecodeBooking("b1", map[string]any{
		"servicePrice": 250.0,
		"status":       "Completed",
		"date":         "2025-03-14",
	})
	assert.Equal(t, 250.0, b.TotalAmount)
	assert.Equal(t, BookingStatus("Completed"), b.Status)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), b.Date)
}

func TestParseDate(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		name string
		in   any
		ok   bool
	}{
		{"time", ts, true},
		{"rfc3339", "2025-01-02T03:04:05Z", true},
		{"day", "2025-01-02", true},
		{"garbage", "yesterday-ish", false},
		{"empty", "", false},
		{"nil", nil, false},
		{"zero time", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := ParseDate(tc.in)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestDecodeOrderItems(t *testing.T) {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	o := DecodeOrder("o1", map[string]any{
		"products": []any{
			map[string]any{"productId": "p1", "productName": "Shampoo", "price": 120.0, "quantity": int64(2)},
			"not-a-map",
		},
		"createdAt":   created,
		"totalAmount": int64(240),
	})
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, created, o.OrderDate)
	assert.Equal(t, OrderPending, o.Status)
	assert.Equal(t, 240.0, o.TotalAmount)
}

func TestValidityActiveAt(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	v := Validity{ValidFrom: from, ValidTo: to, IsActive: true}

	assert.True(t, v.ActiveAt(from.AddDate(0, 0, 10)))
	assert.False(t, v.ActiveAt(to.AddDate(0, 0, 1)))
	assert.False(t, v.ActiveAt(from.AddDate(0, 0, -1)))

	v.IsActive = false
	assert.False(t, v.ActiveAt(from.AddDate(0, 0, 10)))
}

func TestDecodePromoCodeUppercasesCode(t *testing.T) {
	p := DecodePromoCode("x", map[string]any{"code": "summer10", "isActive": true})
	assert.Equal(t, "SUMMER10", p.Code)
	assert.True(t, p.IsActive)
	assert.Equal(t, DiscountPercentage, p.DiscountType)
}
