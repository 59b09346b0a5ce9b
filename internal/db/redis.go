package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"salonhub-backend/internal/config"
)

// Redis wraps the key-value store used for the read-set and cached summaries.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis when REDIS_ADDR is configured. A nil *Redis is
// returned when it is not, and callers fall back to in-memory stores.
func NewRedis(ctx context.Context, cfg config.Config) (*Redis, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Redis{Client: client}, nil
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

func (r *Redis) Health(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Ping(ctx).Err()
}

// Conn returns the client, nil when Redis is not configured.
func (r *Redis) Conn() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}
