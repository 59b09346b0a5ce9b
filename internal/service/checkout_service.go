package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
)

// DefaultPickupLeadTime is how long after checkout an order is expected at
// the pickup branch when the customer does not ask for a date.
const DefaultPickupLeadTime = 48 * time.Hour

type CheckoutItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type CheckoutRequest struct {
	CustomerID    string                `json:"customerId" validate:"required"`
	CustomerName  string                `json:"customerName" validate:"required"`
	CustomerEmail string                `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string                `json:"customerPhone"`
	PickupBranch  string                `json:"pickupBranch" validate:"required"`
	PaymentMethod string                `json:"paymentMethod" validate:"required"`
	DeliveryDate  string                `json:"deliveryDate" validate:"omitempty,datetime=2006-01-02"`
	Items         []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CheckoutService struct {
	Products repository.ProductRepository
	Branches repository.BranchRepository
	Orders   repository.OrderRepository

	now func() time.Time
}

func (s CheckoutService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Checkout prices the cart from the stored products, snapshots the pickup
// branch and stores the order.
func (s CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.PickupBranch = strings.TrimSpace(req.PickupBranch)
	if err := check(req); err != nil {
		return nil, err
	}

	branch, err := s.Branches.GetByName(ctx, req.PickupBranch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("pickupBranch", "unknown branch "+req.PickupBranch)
	}
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, invalid("pickupBranch", "branch "+branch.Name+" is not taking orders")
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(req.Items))
	// quantities per product across every line of the cart
	wanted := make(map[string]int, len(req.Items))
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		p, err := s.Products.GetByID(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid(field, "unknown product "+it.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if p.Status != domain.StatusActive {
			return nil, invalid(field, p.Name+" is not for sale")
		}
		if len(p.BranchNames) > 0 && !containsFold(p.BranchNames, branch.Name) {
			return nil, invalid(field, p.Name+" is not stocked at "+branch.Name)
		}
		wanted[p.ID] += it.Quantity
		if p.Stock < wanted[p.ID] {
			return nil, invalid(field, fmt.Sprintf("only %d of %s left", p.Stock, p.Name))
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    it.Quantity,
			Branch:      branch.Name,
		})
	}

	delivery := s.clock().Add(DefaultPickupLeadTime)
	if req.DeliveryDate != "" {
		delivery, _ = time.Parse("2006-01-02", req.DeliveryDate)
	}
	amount, _ := total.Round(2).Float64()

	return s.Orders.Create(ctx, repository.CreateOrderInput{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Pickup: domain.PickupBranch{
			Name:    branch.Name,
			Address: branch.Address,
			Phone:   branch.Phone,
			Hours:   branch.Hours,
		},
		PaymentMethod: req.PaymentMethod,
		DeliveryDate:  delivery,
		TotalAmount:   amount,
		TransactionID: "TXN-" + strings.ToUpper(uuid.NewString()),
	})
}

func (s CheckoutService) List(ctx context.Context, branch string) ([]domain.Order, error) {
	return s.Orders.List(ctx, branch)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
