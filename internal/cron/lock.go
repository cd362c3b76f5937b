package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock keeps one cron-worker replica sweeping at a time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Extender is implemented by locks that expire on their own. The service
// extends before every job so a long reconcile sweep keeps ownership.
type Extender interface {
	Extend(ctx context.Context) (bool, error)
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
	ExtendIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// RedisLock is SETNX with a per-acquire owner token. Release and Extend only
// touch the key while it still holds that token.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	owner string
}

func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.mu.Lock()
		l.owner = owner
		l.mu.Unlock()
	}
	return ok, nil
}

// Extend pushes the expiry out by the TTL. false means ownership was lost.
func (l *RedisLock) Extend(ctx context.Context) (bool, error) {
	l.mu.Lock()
	owner := l.owner
	l.mu.Unlock()
	if owner == "" {
		return false, nil
	}
	ok, err := l.client.ExtendIfValue(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("extend lock: %w", err)
	}
	if !ok {
		l.clearOwner(owner)
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	owner := l.owner
	l.mu.Unlock()
	if owner == "" {
		return nil
	}
	if _, err := l.client.DelIfValue(ctx, l.key, owner); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.clearOwner(owner)
	return nil
}

func (l *RedisLock) clearOwner(owner string) {
	l.mu.Lock()
	if l.owner == owner {
		l.owner = ""
	}
	l.mu.Unlock()
}

// LocalLock serializes cycles inside one process. It is used when Redis is
// not configured, which limits the worker to a single replica.
type LocalLock struct {
	mu   sync.Mutex
	held bool
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *LocalLock) Release(context.Context) error {
	l.mu.Lock()
	l.held = false
	l.mu.Unlock()
	return nil
}
