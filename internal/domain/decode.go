package domain

import (
	"strconv"
	"strings"
	"time"
)

// Document field decoders. Raw Firestore maps never leave the repository
// layer; every record is built here with its defaults applied once.

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date shapes found in the collections. A zero time and
// false are returned when the value cannot be understood.
func ParseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case int64:
		return time.UnixMilli(val).UTC(), true
	}
	return time.Time{}, false
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func strOr(m map[string]any, key, fallback string) string {
	if s := str(m, key); s != "" {
		return s
	}
	return fallback
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func integer(m map[string]any, key string) int {
	return int(num(m, key))
}

func boolean(m map[string]any, key string, fallback bool) bool {
	v, ok := m[key].(bool)
	if !ok {
		return fallback
	}
	return v
}

func strs(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func date(m map[string]any, key string) time.Time {
	t, _ := ParseDate(m[key])
	return t
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func validity(m map[string]any) Validity {
	return Validity{
		ValidFrom: date(m, "validFrom"),
		ValidTo:   date(m, "validTo"),
		IsActive:  boolean(m, "isActive", false),
	}
}

func DecodeBranch(id string, m map[string]any) Branch {
	return Branch{
		ID:       id,
		Name:     str(m, "name"),
		Address:  str(m, "address"),
		Phone:    str(m, "phone"),
		Hours:    strOr(m, "hours", str(m, "openingHours")),
		City:     str(m, "city"),
		IsActive: boolean(m, "isActive", true),
	}
}

func DecodeProduct(id string, m map[string]any) Product {
	stock := integer(m, "stock")
	if stock < 0 {
		stock = 0
	}
	return Product{
		ID:          id,
		Name:        strOr(m, "name", "Unnamed product"),
		Price:       nonNegative(num(m, "price")),
		Cost:        nonNegative(num(m, "cost")),
		Category:    strOr(m, "category", "Uncategorized"),
		BranchNames: strs(m, "branchNames"),
		Stock:       stock,
		Sold:        integer(m, "totalSold"),
		Status:      ItemStatus(strOr(m, "status", string(StatusActive))),
	}
}

func DecodeService(id string, m map[string]any) Service {
	return Service{
		ID:          id,
		Name:        strOr(m, "name", "Unnamed service"),
		Price:       nonNegative(num(m, "price")),
		Duration:    integer(m, "duration"),
		Category:    strOr(m, "category", "Uncategorized"),
		BranchNames: strs(m, "branchNames"),
		Status:      ItemStatus(strOr(m, "status", string(StatusActive))),
		Bookings:    integer(m, "totalBookings"),
	}
}

func DecodeBooking(id string, m map[string]any) Booking {
	b := Booking{
		ID:            id,
		ServiceID:     str(m, "serviceId"),
		ServiceName:   str(m, "serviceName"),
		ServicePrice:  num(m, "servicePrice"),
		TotalAmount:   num(m, "totalAmount"),
		CustomerName:  strOr(m, "customerName", "Guest"),
		Date:          date(m, "date"),
		Time:          str(m, "time"),
		Status:        BookingStatus(strOr(m, "status", string(BookingPending))),
		Branch:        str(m, "branch"),
		PaymentMethod: str(m, "paymentMethod"),
		CreatedAt:     date(m, "createdAt"),
		UpdatedAt:     date(m, "updatedAt"),
	}
	if b.TotalAmount == 0 {
		b.TotalAmount = b.ServicePrice
	}
	return b
}

func DecodeExpense(id string, m map[string]any) ManualExpense {
	return ManualExpense{
		ID:            id,
		Title:         str(m, "title"),
		Description:   str(m, "description"),
		Amount:        num(m, "amount"),
		Category:      strOr(m, "category", "other"),
		Branch:        str(m, "branch"),
		Date:          date(m, "date"),
		PaymentMethod: str(m, "paymentMethod"),
		Status:        ExpenseStatus(strOr(m, "status", string(ExpensePaid))),
		CreatedBy:     str(m, "createdBy"),
		Notes:         str(m, "notes"),
		CreatedAt:     date(m, "createdAt"),
	}
}

func DecodeOrder(id string, m map[string]any) Order {
	o := Order{
		ID:            id,
		CustomerID:    str(m, "customerId"),
		CustomerName:  str(m, "customerName"),
		CustomerEmail: str(m, "customerEmail"),
		CustomerPhone: str(m, "customerPhone"),
		Pickup: PickupBranch{
			Name:    str(m, "pickupBranch"),
			Address: str(m, "branchAddress"),
			Phone:   str(m, "branchPhone"),
			Hours:   str(m, "branchHours"),
		},
		PaymentMethod: str(m, "paymentMethod"),
		PaymentStatus: strOr(m, "paymentStatus", "pending"),
		OrderDate:     date(m, "orderDate"),
		DeliveryDate:  date(m, "expectedDeliveryDate"),
		Status:        OrderStatus(strOr(m, "status", string(OrderPending))),
		TotalAmount:   num(m, "totalAmount"),
		TransactionID: str(m, "transactionId"),
		CreatedAt:     date(m, "createdAt"),
	}
	if raw, ok := m["products"].([]any); ok {
		for _, item := range raw {
			im, ok := item.(map[string]any)
			if !ok {
				continue
			}
			o.Items = append(o.Items, OrderItem{
				ProductID:   str(im, "productId"),
				ProductName: str(im, "productName"),
				Price:       num(im, "price"),
				Quantity:    integer(im, "quantity"),
				Branch:      str(im, "branch"),
			})
		}
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = o.CreatedAt
	}
	return o
}

func DecodeOffer(id string, m map[string]any) Offer {
	return Offer{
		ID:            id,
		BranchID:      str(m, "branchId"),
		Title:         str(m, "title"),
		Description:   str(m, "description"),
		DiscountType:  DiscountType(strOr(m, "discountType", string(DiscountPercentage))),
		DiscountValue: num(m, "discountValue"),
		UsedCount:     integer(m, "usedCount"),
		Validity:      validity(m),
	}
}

func DecodePromoCode(id string, m map[string]any) PromoCode {
	return PromoCode{
		ID:             id,
		BranchID:       str(m, "branchId"),
		Code:           strings.ToUpper(str(m, "code")),
		DiscountType:   DiscountType(strOr(m, "discountType", string(DiscountPercentage))),
		DiscountValue:  num(m, "discountValue"),
		MinOrderAmount: num(m, "minOrderAmount"),
		UsageLimit:     integer(m, "usageLimit"),
		UsedCount:      integer(m, "usedCount"),
		Validity:       validity(m),
	}
}

func DecodeLoyaltyProgram(id string, m map[string]any) LoyaltyProgram {
	return LoyaltyProgram{
		ID:                id,
		BranchID:          str(m, "branchId"),
		Name:              str(m, "name"),
		PointsPerCurrency: num(m, "pointsPerCurrency"),
		RewardThreshold:   integer(m, "rewardThreshold"),
		RewardValue:       num(m, "rewardValue"),
		UsedCount:         integer(m, "usedCount"),
		Validity:          validity(m),
	}
}

func DecodeCashbackProgram(id string, m map[string]any) CashbackProgram {
	return CashbackProgram{
		ID:              id,
		BranchID:        str(m, "branchId"),
		Name:            str(m, "name"),
		CashbackPercent: num(m, "cashbackPercent"),
		MaxCashback:     num(m, "maxCashback"),
		MinSpend:        num(m, "minSpend"),
		UsedCount:       integer(m, "usedCount"),
		Validity:        validity(m),
	}
}

func DecodeMessage(id string, m map[string]any) Message {
	msg := Message{
		ID:                id,
		Content:           str(m, "content"),
		SenderID:          str(m, "senderId"),
		SenderName:        strOr(m, "senderName", "Admin"),
		SenderRole:        AdminRole(str(m, "senderRole")),
		SenderBranchID:    str(m, "senderBranchId"),
		RecipientBranchID: str(m, "recipientBranchId"),
		Timestamp:         date(m, "timestamp"),
		Read:              boolean(m, "read", false),
		ReadBy:            strs(m, "readBy"),
		Status:            MessageStatus(strOr(m, "status", string(MessageSent))),
	}
	return msg
}

func DecodeFeedback(id string, m map[string]any) Feedback {
	return Feedback{
		ID:           id,
		CustomerName: strOr(m, "customerName", "Customer"),
		Rating:       integer(m, "rating"),
		Comment:      str(m, "comment"),
		Branch:       str(m, "branch"),
		CreatedAt:    date(m, "createdAt"),
	}
}

func DecodeAdmin(id string, m map[string]any) Admin {
	return Admin{
		ID:       id,
		Email:    strings.ToLower(str(m, "email")),
		Name:     strOr(m, "name", str(m, "displayName")),
		Role:     AdminRole(strOr(m, "role", string(RoleBranchAdmin))),
		Branch:   strOr(m, "branch", str(m, "branchName")),
		BranchID: str(m, "branchId"),
		Active:   boolean(m, "isActive", true),
	}
}
