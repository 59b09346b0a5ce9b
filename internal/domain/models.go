package domain

import "time"

// Enumerations
const (
	RoleSuperAdmin  AdminRole = "super_admin"
	RoleBranchAdmin AdminRole = "branch_admin"

	StatusActive   ItemStatus = "active"
	StatusInactive ItemStatus = "inactive"

	BookingPending   BookingStatus = "pending"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingUpcoming  BookingStatus = "upcoming"

	ExpensePaid      ExpenseStatus = "paid"
	ExpensePending   ExpenseStatus = "pending"
	ExpenseCancelled ExpenseStatus = "cancelled"

	OrderUpcoming  OrderStatus = "upcoming"
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"

	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageSeen      MessageStatus = "seen"

	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"

	SourceMessage  NotificationSource = "message"
	SourceBooking  NotificationSource = "booking"
	SourceFeedback NotificationSource = "feedback"
)

type AdminRole string
type ItemStatus string
type BookingStatus string
type ExpenseStatus string
type OrderStatus string
type MessageStatus string
type DiscountType string
type NotificationSource string

// ExpenseCategories lists the accepted manual expense categories.
var ExpenseCategories = []string{
	"rent",
	"utilities",
	"salaries",
	"supplies",
	"equipment",
	"maintenance",
	"marketing",
	"insurance",
	"taxes",
	"training",
	"software",
	"travel",
	"cleaning",
	"other",
}

type Branch struct {
	ID       string
	Name     string
	Address  string
	Phone    string
	Hours    string
	City     string
	IsActive bool
}

type Product struct {
	ID          string
	Name        string
	Price       float64
	Cost        float64
	Category    string
	BranchNames []string
	Stock       int
	Sold        int
	Status      ItemStatus
}

type Service struct {
	ID          string
	Name        string
	Price       float64
	Duration    int
	Category    string
	BranchNames []string
	Status      ItemStatus
	Bookings    int
}

type Booking struct {
	ID            string
	ServiceID     string
	ServiceName   string
	ServicePrice  float64
	TotalAmount   float64
	CustomerName  string
	Date          time.Time
	Time          string
	Status        BookingStatus
	Branch        string
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ManualExpense struct {
	ID            string
	Title         string
	Description   string
	Amount        float64
	Category      string
	Branch        string
	Date          time.Time
	PaymentMethod string
	Status        ExpenseStatus
	CreatedBy     string
	Notes         string
	CreatedAt     time.Time
}

type OrderItem struct {
	ProductID   string
	ProductName string
	Price       float64
	Quantity    int
	Branch      string
}

type PickupBranch struct {
	Name    string
	Address string
	Phone   string
	Hours   string
}

type Order struct {
	ID            string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         []OrderItem
	Pickup        PickupBranch
	PaymentMethod string
	PaymentStatus string
	OrderDate     time.Time
	DeliveryDate  time.Time
	Status        OrderStatus
	TotalAmount   float64
	TransactionID string
	CreatedAt     time.Time
}

// Validity is the window shared by offers, promo codes and programs.
type Validity struct {
	ValidFrom time.Time
	ValidTo   time.Time
	IsActive  bool
}

// ActiveAt reports whether the window is switched on and covers t.
func (v Validity) ActiveAt(t time.Time) bool {
	if !v.IsActive {
		return false
	}
	if !v.ValidFrom.IsZero() && t.Before(v.ValidFrom) {
		return false
	}
	if !v.ValidTo.IsZero() && t.After(v.ValidTo) {
		return false
	}
	return true
}

type Offer struct {
	ID            string
	BranchID      string
	Title         string
	Description   string
	DiscountType  DiscountType
	DiscountValue float64
	UsedCount     int
	Validity
}

type PromoCode struct {
	ID             string
	BranchID       string
	Code           string
	DiscountType   DiscountType
	DiscountValue  float64
	MinOrderAmount float64
	UsageLimit     int
	UsedCount      int
	Validity
}

type LoyaltyProgram struct {
	ID                string
	BranchID          string
	Name              string
	PointsPerCurrency float64
	RewardThreshold   int
	RewardValue       float64
	UsedCount         int
	Validity
}

type CashbackProgram struct {
	ID              string
	BranchID        string
	Name            string
	CashbackPercent float64
	MaxCashback     float64
	MinSpend        float64
	UsedCount       int
	Validity
}

// Message is a branch or admin inbox message.
type Message struct {
	ID                string
	Content           string
	SenderID          string
	SenderName        string
	SenderRole        AdminRole
	SenderBranchID    string
	RecipientBranchID string
	Timestamp         time.Time
	Read              bool
	ReadBy            []string
	Status            MessageStatus
}

type Feedback struct {
	ID           string
	CustomerName string
	Rating       int
	Comment      string
	Branch       string
	CreatedAt    time.Time
}

// Notification is derived from a change event and never persisted.
type Notification struct {
	ID        string             `json:"id"`
	Source    NotificationSource `json:"source"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	Branch    string             `json:"branch,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Admin is a dashboard account keyed by its Firebase Auth uid.
type Admin struct {
	ID       string
	Email    string
	Name     string
	Role     AdminRole
	Branch   string
	BranchID string
	Active   bool
}
