package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/report"
	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/rollup"
)

var (
	// ErrDashboardTimeout is returned when the bulk fetch outlives the
	// dashboard timeout and no cached summary exists.
	ErrDashboardTimeout = errors.New("dashboard load timed out")
	// ErrDashboardUnavailable is returned when every collection failed and
	// nothing was loaded before.
	ErrDashboardUnavailable = errors.New("dashboard data unavailable")
)

// Meta tells the caller how trustworthy a result is. Partial means some
// collections failed and their previous values were used; Stale means the
// result came from the cache after the live load failed.
type Meta struct {
	Partial bool     `json:"partial"`
	Stale   bool     `json:"stale"`
	Failed  []string `json:"failed,omitempty"`
}

type Snapshot struct {
	Input rollup.Input
	Meta
}

type Summary struct {
	Branch      string                `json:"branch"`
	Summary     rollup.ExpenseSummary `json:"summary"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Meta
}

type DashboardService struct {
	Products repository.ProductRepository
	Services repository.ServiceRepository
	Bookings repository.BookingRepository
	Expenses repository.ExpenseRepository
	Orders   repository.OrderRepository
	Branches repository.BranchRepository
	Cache    *Cache
	Timeout  time.Duration
	Currency string
	Logger   *slog.Logger

	now func() time.Time

	mu   sync.Mutex
	last map[string]rollup.Input
}

func (s *DashboardService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *DashboardService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func scopeOf(branch string) string {
	b := strings.TrimSpace(branch)
	if b == "" || strings.EqualFold(b, rollup.AllBranches) {
		return rollup.AllBranches
	}
	return b
}

// Load fetches products, services, bookings and manual expenses for branch
// concurrently. A failed fetch does not cancel the others; its collection
// keeps the last list loaded for the same branch and the snapshot is marked
// partial. The whole load is bounded by Timeout.
func (s *DashboardService) Load(ctx context.Context, branch string) (Snapshot, error) {
	scope := scopeOf(branch)
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var (
		in       rollup.Input
		failMu   sync.Mutex
		failures = map[string]error{}
		g        errgroup.Group
	)
	record := func(collection string, err error) {
		failMu.Lock()
		failures[collection] = err
		failMu.Unlock()
	}
	g.Go(func() error {
		items, err := s.Products.List(ctx, scope)
		if err != nil {
			record(repository.CollectionProducts, err)
			return nil
		}
		in.Products = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Services.List(ctx, scope)
		if err != nil {
			record(repository.CollectionServices, err)
			return nil
		}
		in.Services = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Bookings.List(ctx, scope)
		if err != nil {
			record(repository.CollectionBookings, err)
			return nil
		}
		in.Bookings = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Expenses.List(ctx, scope)
		if err != nil {
			record(repository.CollectionExpenses, err)
			return nil
		}
		in.Expenses = items
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return Snapshot{}, ctx.Err()
		}
		s.logger().Error("dashboard load timed out", "branch", scope, "timeout", s.Timeout)
		return Snapshot{}, ErrDashboardTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = make(map[string]rollup.Input)
	}
	prev, hadPrev := s.last[scope]

	snap := Snapshot{Input: in}
	for _, coll := range []string{repository.CollectionProducts, repository.CollectionServices, repository.CollectionBookings, repository.CollectionExpenses} {
		if _, failed := failures[coll]; failed {
			snap.Failed = append(snap.Failed, coll)
		}
	}
	if len(snap.Failed) == 0 {
		s.last[scope] = in
		return snap, nil
	}
	if len(snap.Failed) == 4 && !hadPrev {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDashboardUnavailable, failures[repository.CollectionProducts])
	}

	snap.Partial = true
	for _, coll := range snap.Failed {
		switch coll {
		case repository.CollectionProducts:
			snap.Input.Products = prev.Products
		case repository.CollectionServices:
			snap.Input.Services = prev.Services
		case repository.CollectionBookings:
			snap.Input.Bookings = prev.Bookings
		case repository.CollectionExpenses:
			snap.Input.Expenses = prev.Expenses
		}
	}
	s.last[scope] = snap.Input
	s.logger().Warn("dashboard loaded with partial data", "branch", scope, "failed", snap.Failed)
	return snap, nil
}

// Summary returns the expense summary for branch. When the live load fails
// the last cached summary is returned marked stale. Complete summaries are
// written to the cache.
func (s *DashboardService) Summary(ctx context.Context, branch string) (*Summary, error) {
	scope := scopeOf(branch)
	snap, err := s.Load(ctx, scope)
	if err != nil {
		var cached Summary
		ok, cacheErr := s.Cache.GetJSON(context.WithoutCancel(ctx), summaryKey(scope), &cached)
		if cacheErr != nil {
			s.logger().Warn("dashboard cache read failed", "branch", scope, "err", cacheErr)
		}
		if ok {
			cached.Stale = true
			return &cached, nil
		}
		return nil, err
	}

	out := &Summary{
		Branch:      scope,
		Summary:     rollup.Compute(snap.Input, scope),
		GeneratedAt: s.clock().UTC(),
		Meta:        snap.Meta,
	}
	if !snap.Partial {
		if err := s.Cache.SetJSON(ctx, summaryKey(scope), out); err != nil {
			s.logger().Warn("dashboard cache write failed", "branch", scope, "err", err)
		}
	}
	return out, nil
}

// Refresh recomputes the summary of branch and stores it in the cache. It
// fails when any collection could not be loaded.
func (s *DashboardService) Refresh(ctx context.Context, branch string) error {
	out, err := s.Summary(ctx, branch)
	if err != nil {
		return err
	}
	if out.Stale || out.Partial {
		return fmt.Errorf("refresh %s: incomplete data (failed: %s)", out.Branch, strings.Join(out.Failed, ","))
	}
	return nil
}

func (s *DashboardService) Monthly(ctx context.Context, branch string, year int) ([]rollup.MonthlySummary, Meta, error) {
	snap, err := s.Load(ctx, branch)
	if err != nil {
		return nil, Meta{}, err
	}
	if year == 0 {
		year = s.clock().Year()
	}
	return rollup.Monthly(snap.Input, scopeOf(branch), year), snap.Meta, nil
}

// BranchBreakdown computes one summary per known branch. Branch names come
// from the branches collection and from the loaded records.
func (s *DashboardService) BranchBreakdown(ctx context.Context) ([]rollup.BranchSummary, Meta, error) {
	snap, err := s.Load(ctx, rollup.AllBranches)
	if err != nil {
		return nil, Meta{}, err
	}
	return rollup.ByBranch(snap.Input, s.branchNames(ctx, snap.Input)), snap.Meta, nil
}

func (s *DashboardService) Categories(ctx context.Context, branch string) ([]rollup.CategorySummary, Meta, error) {
	snap, err := s.Load(ctx, branch)
	if err != nil {
		return nil, Meta{}, err
	}
	return rollup.ByCategory(snap.Input, scopeOf(branch)), snap.Meta, nil
}

func (s *DashboardService) branchNames(ctx context.Context, in rollup.Input) []string {
	names := rollup.Branches(in)
	known, err := s.Branches.Names(ctx)
	if err != nil {
		s.logger().Warn("branch list unavailable, using names from records", "err", err)
		return names
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for _, n := range known {
		if _, ok := seen[n]; !ok {
			names = append(names, n)
			seen[n] = struct{}{}
		}
	}
	return names
}

// Analytics computes lifetime and time-series figures over bookings and
// orders. Both fetches must succeed.
func (s *DashboardService) Analytics(ctx context.Context, branch string) (rollup.AnalyticsSummary, error) {
	scope := scopeOf(branch)
	var (
		bookings []domain.Booking
		orders   []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.Bookings.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.Orders.List(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return rollup.AnalyticsSummary{}, err
	}
	return rollup.Analytics(bookings, orders, s.clock()), nil
}

// Report assembles everything the exports render for branch and year.
func (s *DashboardService) Report(ctx context.Context, branch string, year int) (report.Report, Meta, error) {
	scope := scopeOf(branch)
	snap, err := s.Load(ctx, scope)
	if err != nil {
		return report.Report{}, Meta{}, err
	}
	if year == 0 {
		year = s.clock().Year()
	}
	var branches []rollup.BranchSummary
	if scope == rollup.AllBranches {
		branches = rollup.ByBranch(snap.Input, s.branchNames(ctx, snap.Input))
	} else {
		branches = rollup.ByBranch(snap.Input, []string{scope})
	}
	return report.Report{
		Branch:      scope,
		Currency:    s.Currency,
		GeneratedAt: s.clock(),
		Summary:     rollup.Compute(snap.Input, scope),
		Branches:    branches,
		Categories:  rollup.ByCategory(snap.Input, scope),
		Monthly:     rollup.Monthly(snap.Input, scope, year),
		Expenses:    snap.Input.Expenses,
	}, snap.Meta, nil
}
