package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
)

// RefreshScheduler queues a recomputation of a branch's cached dashboard.
type RefreshScheduler interface {
	ScheduleRefresh(ctx context.Context, branch string) error
}

type CreateExpenseRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Category      string  `json:"category" validate:"required,expense_category"`
	Branch        string  `json:"branch" validate:"required"`
	Date          string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status" validate:"omitempty,oneof=paid pending cancelled"`
	Notes         string  `json:"notes"`
}

type ExpenseService struct {
	Repo    repository.ExpenseRepository
	Refresh RefreshScheduler
	Logger  *slog.Logger
}

func (s ExpenseService) List(ctx context.Context, branch string) ([]domain.ManualExpense, error) {
	return s.Repo.List(ctx, branch)
}

// Create validates req and stores the expense. Nothing is written when
// validation fails.
func (s ExpenseService) Create(ctx context.Context, req CreateExpenseRequest, createdBy string) (*domain.ManualExpense, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Branch = strings.TrimSpace(req.Branch)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := check(req); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}
	status := domain.ExpensePaid
	if req.Status != "" {
		status = domain.ExpenseStatus(req.Status)
	}

	exp, err := s.Repo.Create(ctx, repository.CreateExpenseInput{
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      req.Category,
		Branch:        req.Branch,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		CreatedBy:     createdBy,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.scheduleRefresh(ctx, exp.Branch)
	return exp, nil
}

// Delete removes an expense. A non-empty branch restricts the delete to
// that branch's expenses.
func (s ExpenseService) Delete(ctx context.Context, id, branch string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "is required")
	}
	exp, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := owns(branch, exp.Branch); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.scheduleRefresh(ctx, exp.Branch)
	return nil
}

func (s ExpenseService) scheduleRefresh(ctx context.Context, branch string) {
	if s.Refresh == nil {
		return
	}
	for _, b := range []string{branch, "all"} {
		if err := s.Refresh.ScheduleRefresh(ctx, b); err != nil {
			logger := s.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("schedule dashboard refresh failed", "branch", b, "err", err)
		}
	}
}
