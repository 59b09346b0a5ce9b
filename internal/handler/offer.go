package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/service"
)

type OfferHandler struct {
	Service service.OfferService
}

func (h OfferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/offers", h.list)
	r.Post("/offers/{kind}", h.create)
	r.Patch("/offers/{kind}/{id}", h.setActive)
	r.Delete("/offers/{kind}/{id}", h.delete)
}

func (h OfferHandler) list(w http.ResponseWriter, r *http.Request) {
	branchID := branchIDQuery(r)
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}
	out, err := h.Service.List(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	now := time.Now()
	resp := map[string]any{
		"offers":     mapOffers(out.Offers, now, offerJSON),
		"promoCodes": mapOffers(out.PromoCodes, now, promoJSON),
		"loyalty":    mapOffers(out.Loyalty, now, loyaltyJSON),
		"cashback":   mapOffers(out.Cashback, now, cashbackJSON),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h OfferHandler) create(w http.ResponseWriter, r *http.Request) {
	kind := repository.OfferKind(chi.URLParam(r, "kind"))
	scope := ownBranchID(r)

	var (
		id        string
		err       error
		decodeErr error
	)
	dec := json.NewDecoder(r.Body)
	switch kind {
	case repository.KindOffer:
		var req service.CreateOfferRequest
		if decodeErr = dec.Decode(&req); decodeErr == nil {
			if scope != "" {
				req.BranchID = scope
			}
			id, err = h.Service.CreateOffer(r.Context(), req)
		}
	case repository.KindPromo:
		var req service.CreatePromoCodeRequest
		if decodeErr = dec.Decode(&req); decodeErr == nil {
			if scope != "" {
				req.BranchID = scope
			}
			id, err = h.Service.CreatePromoCode(r.Context(), req)
		}
	case repository.KindLoyalty:
		var req service.CreateLoyaltyRequest
		if decodeErr = dec.Decode(&req); decodeErr == nil {
			if scope != "" {
				req.BranchID = scope
			}
			id, err = h.Service.CreateLoyalty(r.Context(), req)
		}
	case repository.KindCashback:
		var req service.CreateCashbackRequest
		if decodeErr = dec.Decode(&req); decodeErr == nil {
			if scope != "" {
				req.BranchID = scope
			}
			id, err = h.Service.CreateCashback(r.Context(), req)
		}
	default:
		writeError(w, http.StatusNotFound, "unknown offer kind")
		return
	}
	if decodeErr != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h OfferHandler) setActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive is required")
		return
	}
	kind := repository.OfferKind(chi.URLParam(r, "kind"))
	if err := h.Service.SetActive(r.Context(), kind, chi.URLParam(r, "id"), ownBranchID(r), *req.IsActive); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isActive": *req.IsActive})
}

func (h OfferHandler) delete(w http.ResponseWriter, r *http.Request) {
	kind := repository.OfferKind(chi.URLParam(r, "kind"))
	if err := h.Service.Delete(r.Context(), kind, chi.URLParam(r, "id"), ownBranchID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func mapOffers[T any](items []T, now time.Time, fn func(T, time.Time) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it, now))
	}
	return out
}

func validityJSON(m map[string]any, v domain.Validity, now time.Time) map[string]any {
	m["validFrom"] = formatOptionalDate(v.ValidFrom)
	m["validTo"] = formatOptionalDate(v.ValidTo)
	m["isActive"] = v.IsActive
	m["activeNow"] = v.ActiveAt(now)
	return m
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func offerJSON(o domain.Offer, now time.Time) map[string]any {
	return validityJSON(map[string]any{
		"id":            o.ID,
		"branchId":      o.BranchID,
		"title":         o.Title,
		"description":   o.Description,
		"discountType":  string(o.DiscountType),
		"discountValue": o.DiscountValue,
		"usedCount":     o.UsedCount,
	}, o.Validity, now)
}

func promoJSON(p domain.PromoCode, now time.Time) map[string]any {
	return validityJSON(map[string]any{
		"id":             p.ID,
		"branchId":       p.BranchID,
		"code":           p.Code,
		"discountType":   string(p.DiscountType),
		"discountValue":  p.DiscountValue,
		"minOrderAmount": p.MinOrderAmount,
		"usageLimit":     p.UsageLimit,
		"usedCount":      p.UsedCount,
	}, p.Validity, now)
}

func loyaltyJSON(l domain.LoyaltyProgram, now time.Time) map[string]any {
	return validityJSON(map[string]any{
		"id":                l.ID,
		"branchId":          l.BranchID,
		"name":              l.Name,
		"pointsPerCurrency": l.PointsPerCurrency,
		"rewardThreshold":   l.RewardThreshold,
		"rewardValue":       l.RewardValue,
		"usedCount":         l.UsedCount,
	}, l.Validity, now)
}

func cashbackJSON(c domain.CashbackProgram, now time.Time) map[string]any {
	return validityJSON(map[string]any{
		"id":              c.ID,
		"branchId":        c.BranchID,
		"name":            c.Name,
		"cashbackPercent": c.CashbackPercent,
		"maxCashback":     c.MaxCashback,
		"minSpend":        c.MinSpend,
		"usedCount":       c.UsedCount,
	}, c.Validity, now)
}
