package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ReadStore persists the ids of acknowledged notifications so they are not
// raised again after a restart.
type ReadStore interface {
	Has(ctx context.Context, id string) (bool, error)
	MarkRead(ctx context.Context, id string) error
}

// RedisReadStore keeps the read-set in a Redis set. SADD and SISMEMBER are
// atomic, so concurrent dashboards sharing a scope never lose an update.
type RedisReadStore struct {
	Client *redis.Client
	Key    string
}

// ReadSetKey is the Redis key of the read-set for scope.
func ReadSetKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return "notifications:read:" + scope
}

func NewRedisReadStore(client *redis.Client, scope string) *RedisReadStore {
	return &RedisReadStore{Client: client, Key: ReadSetKey(scope)}
}

func (s *RedisReadStore) Has(ctx context.Context, id string) (bool, error) {
	ok, err := s.Client.SIsMember(ctx, s.Key, id).Result()
	if err != nil {
		return false, fmt.Errorf("read-set lookup: %w", err)
	}
	return ok, nil
}

func (s *RedisReadStore) MarkRead(ctx context.Context, id string) error {
	if err := s.Client.SAdd(ctx, s.Key, id).Err(); err != nil {
		return fmt.Errorf("read-set add: %w", err)
	}
	return nil
}

// MemoryReadStore is a process-local read-set.
type MemoryReadStore struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewMemoryReadStore(ids ...string) *MemoryReadStore {
	s := &MemoryReadStore{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *MemoryReadStore) Has(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *MemoryReadStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
	return nil
}
