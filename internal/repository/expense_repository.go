package repository

import (
	"context"
	"time"

	"salonhub-backend/internal/domain"
)

type ExpenseRepository struct {
	Store Fetcher
}

type CreateExpenseInput struct {
	Title         string
	Description   string
	Amount        float64
	Category      string
	Branch        string
	Date          time.Time
	PaymentMethod string
	Status        domain.ExpenseStatus
	CreatedBy     string
	Notes         string
}

func (r ExpenseRepository) Create(ctx context.Context, in CreateExpenseInput) (*domain.ManualExpense, error) {
	id, err := r.Store.Create(ctx, CollectionExpenses, map[string]any{
		"title":         in.Title,
		"description":   in.Description,
		"amount":        in.Amount,
		"category":      in.Category,
		"branch":        in.Branch,
		"date":          formatDate(in.Date),
		"paymentMethod": in.PaymentMethod,
		"status":        string(in.Status),
		"createdBy":     in.CreatedBy,
		"notes":         in.Notes,
		"createdAt":     ServerTimestamp,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ManualExpense{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		Branch:        in.Branch,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		CreatedBy:     in.CreatedBy,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (r ExpenseRepository) List(ctx context.Context, branch string) ([]domain.ManualExpense, error) {
	q := Query{Collection: CollectionExpenses, OrderBy: "date", Desc: true}
	if branchScope(branch) {
		q = q.Where("branch", OpEqual, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ManualExpense, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeExpense(d.ID, d.Data))
	}
	return items, nil
}

func (r ExpenseRepository) Get(ctx context.Context, id string) (*domain.ManualExpense, error) {
	doc, err := r.Store.Get(ctx, CollectionExpenses, id)
	if err != nil {
		return nil, err
	}
	e := domain.DecodeExpense(doc.ID, doc.Data)
	return &e, nil
}

func (r ExpenseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Store.Get(ctx, CollectionExpenses, id); err != nil {
		return err
	}
	return r.Store.Delete(ctx, CollectionExpenses, id)
}
