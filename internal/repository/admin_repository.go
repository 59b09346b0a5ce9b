package repository

import (
	"context"

	"salonhub-backend/internal/domain"
)

type AdminRepository struct {
	Store Fetcher
}

// GetByID loads the admin profile stored under a Firebase Auth uid.
func (r AdminRepository) GetByID(ctx context.Context, uid string) (*domain.Admin, error) {
	doc, err := r.Store.Get(ctx, CollectionAdmins, uid)
	if err != nil {
		return nil, err
	}
	a := domain.DecodeAdmin(doc.ID, doc.Data)
	return &a, nil
}
