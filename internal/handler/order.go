package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/service"
)

type OrderHandler struct {
	Service service.CheckoutService
}

func (h OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.checkout)
}

func (h OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), branchQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, o := range items {
		resp = append(resp, orderJSON(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	order, err := h.Service.Checkout(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderJSON(*order))
}

func orderJSON(o domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"price":       it.Price,
			"quantity":    it.Quantity,
			"branch":      it.Branch,
		})
	}
	return map[string]any{
		"id":            o.ID,
		"transactionId": o.TransactionID,
		"customerId":    o.CustomerID,
		"customerName":  o.CustomerName,
		"customerEmail": o.CustomerEmail,
		"customerPhone": o.CustomerPhone,
		"products":      items,
		"pickupBranch": map[string]string{
			"name":    o.Pickup.Name,
			"address": o.Pickup.Address,
			"phone":   o.Pickup.Phone,
			"hours":   o.Pickup.Hours,
		},
		"paymentMethod":        o.PaymentMethod,
		"paymentStatus":        o.PaymentStatus,
		"orderDate":            formatOptionalDate(o.OrderDate),
		"expectedDeliveryDate": formatOptionalDate(o.DeliveryDate),
		"status":               string(o.Status),
		"totalAmount":          o.TotalAmount,
	}
}
