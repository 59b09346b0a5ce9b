package repository

import (
	"context"
	"time"

	"salonhub-backend/internal/domain"
)

type OrderRepository struct {
	Store Fetcher
}

type CreateOrderInput struct {
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         []domain.OrderItem
	Pickup        domain.PickupBranch
	PaymentMethod string
	DeliveryDate  time.Time
	TotalAmount   float64
	TransactionID string
}

// Create stores an order placed at checkout. The order starts upcoming with
// a pending payment; later transitions are made by branch staff.
func (r OrderRepository) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	items := make([]any, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, map[string]any{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"price":       it.Price,
			"quantity":    int64(it.Quantity),
			"branch":      it.Branch,
		})
	}
	now := time.Now().UTC()
	id, err := r.Store.Create(ctx, CollectionOrders, map[string]any{
		"customerId":           in.CustomerID,
		"customerName":         in.CustomerName,
		"customerEmail":        in.CustomerEmail,
		"customerPhone":        in.CustomerPhone,
		"products":             items,
		"pickupBranch":         in.Pickup.Name,
		"branchAddress":        in.Pickup.Address,
		"branchPhone":          in.Pickup.Phone,
		"branchHours":          in.Pickup.Hours,
		"paymentMethod":        in.PaymentMethod,
		"paymentStatus":        "pending",
		"orderDate":            formatDate(now),
		"expectedDeliveryDate": formatDate(in.DeliveryDate),
		"status":               string(domain.OrderUpcoming),
		"totalAmount":          in.TotalAmount,
		"transactionId":        in.TransactionID,
		"createdAt":            ServerTimestamp,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:            id,
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Items:         in.Items,
		Pickup:        in.Pickup,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: "pending",
		OrderDate:     now,
		DeliveryDate:  in.DeliveryDate,
		Status:        domain.OrderUpcoming,
		TotalAmount:   in.TotalAmount,
		TransactionID: in.TransactionID,
		CreatedAt:     now,
	}, nil
}

func (r OrderRepository) List(ctx context.Context, branch string) ([]domain.Order, error) {
	q := Query{Collection: CollectionOrders, OrderBy: "createdAt", Desc: true}
	if branchScope(branch) {
		q = q.Where("pickupBranch", OpEqual, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeOrder(d.ID, d.Data))
	}
	return items, nil
}
