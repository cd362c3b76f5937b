package ratelimit

import (
	"context"
	"errors"
	"time"
)

type windowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	RateLimitKey(scope string) string
}

// RedisStore shares counters across API instances.
type RedisStore struct {
	client windowCounter
	now    func() time.Time
}

func NewRedisStore(client windowCounter) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client, now: time.Now}, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	count, ttl, err := s.client.IncrWindow(ctx, s.client.RateLimitKey(key), window)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, s.now().Add(ttl), nil
}
