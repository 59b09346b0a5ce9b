package repository

import (
	"context"

	"salonhub-backend/internal/domain"
)

type BookingRepository struct {
	Store Fetcher
}

func (r BookingRepository) List(ctx context.Context, branch string) ([]domain.Booking, error) {
	q := Query{Collection: CollectionBookings, OrderBy: "date"}
	if branchScope(branch) {
		q = q.Where("branch", OpEqual, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeBooking(d.ID, d.Data))
	}
	return items, nil
}

type FeedbackRepository struct {
	Store Fetcher
}

func (r FeedbackRepository) List(ctx context.Context, branch string) ([]domain.Feedback, error) {
	q := Query{Collection: CollectionFeedback, OrderBy: "createdAt", Desc: true}
	if branchScope(branch) {
		q = q.Where("branch", OpEqual, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Feedback, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeFeedback(d.ID, d.Data))
	}
	return items, nil
}
