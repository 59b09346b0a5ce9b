package ports

import (
	"context"

	"salonhub-backend/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NotificationSink receives every emitted notification. Implementations are
// best effort; a returned error is logged by the caller and never retried.
type NotificationSink interface {
	Notify(ctx context.Context, n domain.Notification) error
}
