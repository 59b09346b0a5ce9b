package repository

import (
	"context"
	"strings"

	"salonhub-backend/internal/domain"
)

type ProductRepository struct {
	Store Fetcher
}

// List returns the products stocked by branch, or every product for "all".
func (r ProductRepository) List(ctx context.Context, branch string) ([]domain.Product, error) {
	q := Query{Collection: CollectionProducts, OrderBy: "name"}
	if branchScope(branch) {
		q = q.Where("branchNames", OpArrayContains, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeProduct(d.ID, d.Data))
	}
	return items, nil
}

func (r ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	doc, err := r.Store.Get(ctx, CollectionProducts, id)
	if err != nil {
		return nil, err
	}
	p := domain.DecodeProduct(doc.ID, doc.Data)
	return &p, nil
}

type ServiceRepository struct {
	Store Fetcher
}

func (r ServiceRepository) List(ctx context.Context, branch string) ([]domain.Service, error) {
	q := Query{Collection: CollectionServices, OrderBy: "name"}
	if branchScope(branch) {
		q = q.Where("branchNames", OpArrayContains, branch)
	}
	docs, err := r.Store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Service, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeService(d.ID, d.Data))
	}
	return items, nil
}

type BranchRepository struct {
	Store Fetcher
}

func (r BranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	docs, err := r.Store.Fetch(ctx, Query{Collection: CollectionBranches, OrderBy: "name"})
	if err != nil {
		return nil, err
	}
	items := make([]domain.Branch, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeBranch(d.ID, d.Data))
	}
	return items, nil
}

// GetByName finds a branch by its display name, case-insensitively.
func (r BranchRepository) GetByName(ctx context.Context, name string) (*domain.Branch, error) {
	branches, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if strings.EqualFold(b.Name, strings.TrimSpace(name)) {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

// Names returns the branch names in display order.
func (r BranchRepository) Names(ctx context.Context) ([]string, error) {
	branches, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		if b.Name != "" {
			names = append(names, b.Name)
		}
	}
	return names, nil
}
