package service

import (
	"context"
	"strings"

	"salonhub-backend/internal/repository"
)

// TopicSubscriber adds a push token to the admin notification topic.
type TopicSubscriber interface {
	Subscribe(ctx context.Context, token string) error
}

type TokenService struct {
	Repo   repository.FCMRepository
	Topics TopicSubscriber
	Topic  string
}

// Register stores the browser token and subscribes it to the topic. The
// token is stored only after the subscription succeeded.
func (s TokenService) Register(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token", "is required")
	}
	if s.Topics != nil {
		if err := s.Topics.Subscribe(ctx, token); err != nil {
			return err
		}
	}
	return s.Repo.Register(ctx, repository.RegisterTokenInput{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		Topic:    s.Topic,
	})
}
