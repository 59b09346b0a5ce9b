package repository

import (
	"context"
)

type FCMRepository struct {
	Store Fetcher
}

type RegisterTokenInput struct {
	UserID   string
	Token    string
	Platform string
	Topic    string
}

// Register records a browser push token so it can be resubscribed to the
// admin topic later.
func (r FCMRepository) Register(ctx context.Context, in RegisterTokenInput) error {
	_, err := r.Store.Create(ctx, CollectionFCMTokens, map[string]any{
		"userId":    in.UserID,
		"token":     in.Token,
		"platform":  in.Platform,
		"topic":     in.Topic,
		"createdAt": ServerTimestamp,
	})
	return err
}
