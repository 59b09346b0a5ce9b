package authctx

import (
	"context"

	"salonhub-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the admin behind a request. Branch and BranchID are empty
// for the super admin.
type CurrentUser struct {
	ID       string
	Email    string
	Name     string
	Role     domain.AdminRole
	Branch   string
	BranchID string
}

func (u CurrentUser) IsSuperAdmin() bool {
	return u.Role == domain.RoleSuperAdmin
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
