package repository

import (
	"context"
	"fmt"

	"salonhub-backend/internal/domain"
)

// OfferKind selects one of the branch-scoped promotion collections.
type OfferKind string

const (
	KindOffer    OfferKind = "offers"
	KindPromo    OfferKind = "promo-codes"
	KindLoyalty  OfferKind = "loyalty"
	KindCashback OfferKind = "cashback"
)

func (k OfferKind) Collection() (string, error) {
	switch k {
	case KindOffer:
		return CollectionOffers, nil
	case KindPromo:
		return CollectionPromoCodes, nil
	case KindLoyalty:
		return CollectionLoyaltyPrograms, nil
	case KindCashback:
		return CollectionCashback, nil
	}
	return "", fmt.Errorf("unknown offer kind %q", string(k))
}

type OfferRepository struct {
	Store Fetcher
}

func (r OfferRepository) list(ctx context.Context, kind OfferKind, branchID string) ([]Document, error) {
	coll, err := kind.Collection()
	if err != nil {
		return nil, err
	}
	q := Query{Collection: coll, OrderBy: "createdAt", Desc: true}
	if branchScope(branchID) {
		q = q.Where("branchId", OpEqual, branchID)
	}
	return r.Store.Fetch(ctx, q)
}

func (r OfferRepository) ListOffers(ctx context.Context, branchID string) ([]domain.Offer, error) {
	docs, err := r.list(ctx, KindOffer, branchID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Offer, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeOffer(d.ID, d.Data))
	}
	return items, nil
}

func (r OfferRepository) ListPromoCodes(ctx context.Context, branchID string) ([]domain.PromoCode, error) {
	docs, err := r.list(ctx, KindPromo, branchID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.PromoCode, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodePromoCode(d.ID, d.Data))
	}
	return items, nil
}

func (r OfferRepository) ListLoyaltyPrograms(ctx context.Context, branchID string) ([]domain.LoyaltyProgram, error) {
	docs, err := r.list(ctx, KindLoyalty, branchID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LoyaltyProgram, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeLoyaltyProgram(d.ID, d.Data))
	}
	return items, nil
}

func (r OfferRepository) ListCashbackPrograms(ctx context.Context, branchID string) ([]domain.CashbackProgram, error) {
	docs, err := r.list(ctx, KindCashback, branchID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CashbackProgram, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeCashbackProgram(d.ID, d.Data))
	}
	return items, nil
}

// Create stores fields as a new document of kind; usedCount and createdAt
// are always initialised here.
func (r OfferRepository) Create(ctx context.Context, kind OfferKind, fields map[string]any) (string, error) {
	coll, err := kind.Collection()
	if err != nil {
		return "", err
	}
	data := copyMap(fields)
	data["usedCount"] = int64(0)
	data["createdAt"] = ServerTimestamp
	return r.Store.Create(ctx, coll, data)
}

// BranchID returns the branch a promotion belongs to.
func (r OfferRepository) BranchID(ctx context.Context, kind OfferKind, id string) (string, error) {
	coll, err := kind.Collection()
	if err != nil {
		return "", err
	}
	doc, err := r.Store.Get(ctx, coll, id)
	if err != nil {
		return "", err
	}
	branchID, _ := doc.Data["branchId"].(string)
	return branchID, nil
}

func (r OfferRepository) SetActive(ctx context.Context, kind OfferKind, id string, active bool) error {
	coll, err := kind.Collection()
	if err != nil {
		return err
	}
	return r.Store.Update(ctx, coll, id, map[string]any{
		"isActive":  active,
		"updatedAt": ServerTimestamp,
	})
}

func (r OfferRepository) Delete(ctx context.Context, kind OfferKind, id string) error {
	coll, err := kind.Collection()
	if err != nil {
		return err
	}
	return r.Store.Delete(ctx, coll, id)
}
