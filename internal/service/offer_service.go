package service

import (
	"context"
	"strings"
	"time"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
)

// ValidityRequest is the activation window shared by every promotion.
type ValidityRequest struct {
	ValidFrom string `json:"validFrom" validate:"required,datetime=2006-01-02"`
	ValidTo   string `json:"validTo" validate:"required,datetime=2006-01-02"`
	IsActive  *bool  `json:"isActive"`
}

type CreateOfferRequest struct {
	BranchID      string  `json:"branchId" validate:"required"`
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	DiscountType  string  `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64 `json:"discountValue" validate:"gt=0"`
	ValidityRequest
}

type CreatePromoCodeRequest struct {
	BranchID       string  `json:"branchId" validate:"required"`
	Code           string  `json:"code" validate:"required,alphanum,min=3,max=20"`
	DiscountType   string  `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue  float64 `json:"discountValue" validate:"gt=0"`
	MinOrderAmount float64 `json:"minOrderAmount" validate:"gte=0"`
	UsageLimit     int     `json:"usageLimit" validate:"gte=0"`
	ValidityRequest
}

type CreateLoyaltyRequest struct {
	BranchID          string  `json:"branchId" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	PointsPerCurrency float64 `json:"pointsPerCurrency" validate:"gt=0"`
	RewardThreshold   int     `json:"rewardThreshold" validate:"gt=0"`
	RewardValue       float64 `json:"rewardValue" validate:"gt=0"`
	ValidityRequest
}

type CreateCashbackRequest struct {
	BranchID        string  `json:"branchId" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	CashbackPercent float64 `json:"cashbackPercent" validate:"gt=0,lte=100"`
	MaxCashback     float64 `json:"maxCashback" validate:"gte=0"`
	MinSpend        float64 `json:"minSpend" validate:"gte=0"`
	ValidityRequest
}

// Offers groups every promotion kind of one branch.
type Offers struct {
	Offers     []domain.Offer           `json:"offers"`
	PromoCodes []domain.PromoCode       `json:"promoCodes"`
	Loyalty    []domain.LoyaltyProgram  `json:"loyalty"`
	Cashback   []domain.CashbackProgram `json:"cashback"`
}

type OfferService struct {
	Repo repository.OfferRepository
}

func (s OfferService) List(ctx context.Context, branchID string) (*Offers, error) {
	var out Offers
	var err error
	if out.Offers, err = s.Repo.ListOffers(ctx, branchID); err != nil {
		return nil, err
	}
	if out.PromoCodes, err = s.Repo.ListPromoCodes(ctx, branchID); err != nil {
		return nil, err
	}
	if out.Loyalty, err = s.Repo.ListLoyaltyPrograms(ctx, branchID); err != nil {
		return nil, err
	}
	if out.Cashback, err = s.Repo.ListCashbackPrograms(ctx, branchID); err != nil {
		return nil, err
	}
	return &out, nil
}

// window validates the request, checks that the window does not end before
// it starts and returns the stored form of the window.
func window(req any, v ValidityRequest) (map[string]any, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	from, _ := time.Parse("2006-01-02", v.ValidFrom)
	to, _ := time.Parse("2006-01-02", v.ValidTo)
	if to.Before(from) {
		return nil, invalid("validTo", "must not be before validFrom")
	}
	active := true
	if v.IsActive != nil {
		active = *v.IsActive
	}
	return map[string]any{
		"validFrom": v.ValidFrom,
		"validTo":   v.ValidTo,
		"isActive":  active,
	}, nil
}

func (s OfferService) CreateOffer(ctx context.Context, req CreateOfferRequest) (string, error) {
	req.Title = strings.TrimSpace(req.Title)
	fields, err := window(req, req.ValidityRequest)
	if err != nil {
		return "", err
	}
	fields["branchId"] = req.BranchID
	fields["title"] = req.Title
	fields["description"] = req.Description
	fields["discountType"] = req.DiscountType
	fields["discountValue"] = req.DiscountValue
	return s.Repo.Create(ctx, repository.KindOffer, fields)
}

func (s OfferService) CreatePromoCode(ctx context.Context, req CreatePromoCodeRequest) (string, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	fields, err := window(req, req.ValidityRequest)
	if err != nil {
		return "", err
	}
	if req.DiscountType == string(domain.DiscountPercentage) && req.DiscountValue > 100 {
		return "", invalid("discountValue", "must be at most 100 for a percentage discount")
	}
	fields["branchId"] = req.BranchID
	fields["code"] = req.Code
	fields["discountType"] = req.DiscountType
	fields["discountValue"] = req.DiscountValue
	fields["minOrderAmount"] = req.MinOrderAmount
	fields["usageLimit"] = int64(req.UsageLimit)
	return s.Repo.Create(ctx, repository.KindPromo, fields)
}

func (s OfferService) CreateLoyalty(ctx context.Context, req CreateLoyaltyRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	fields, err := window(req, req.ValidityRequest)
	if err != nil {
		return "", err
	}
	fields["branchId"] = req.BranchID
	fields["name"] = req.Name
	fields["pointsPerCurrency"] = req.PointsPerCurrency
	fields["rewardThreshold"] = int64(req.RewardThreshold)
	fields["rewardValue"] = req.RewardValue
	return s.Repo.Create(ctx, repository.KindLoyalty, fields)
}

func (s OfferService) CreateCashback(ctx context.Context, req CreateCashbackRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	fields, err := window(req, req.ValidityRequest)
	if err != nil {
		return "", err
	}
	fields["branchId"] = req.BranchID
	fields["name"] = req.Name
	fields["cashbackPercent"] = req.CashbackPercent
	fields["maxCashback"] = req.MaxCashback
	fields["minSpend"] = req.MinSpend
	return s.Repo.Create(ctx, repository.KindCashback, fields)
}

// SetActive toggles a promotion. A non-empty branchID restricts the change
// to that branch's promotions; the same holds for Delete.
func (s OfferService) SetActive(ctx context.Context, kind repository.OfferKind, id, branchID string, active bool) error {
	if err := s.authorize(ctx, kind, id, branchID); err != nil {
		return err
	}
	return s.Repo.SetActive(ctx, kind, id, active)
}

func (s OfferService) Delete(ctx context.Context, kind repository.OfferKind, id, branchID string) error {
	if err := s.authorize(ctx, kind, id, branchID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, kind, id)
}

func (s OfferService) authorize(ctx context.Context, kind repository.OfferKind, id, branchID string) error {
	if _, err := kind.Collection(); err != nil {
		return invalid("kind", err.Error())
	}
	owner, err := s.Repo.BranchID(ctx, kind, id)
	if err != nil {
		return err
	}
	return owns(branchID, owner)
}
