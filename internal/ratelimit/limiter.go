// Package ratelimit implements fixed-window admission control over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Policy bounds a key to MaxRequests per Window.
type Policy struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

func (p Policy) validate() error {
	if p.MaxRequests <= 0 {
		return fmt.Errorf("policy %q: max requests must be positive", p.Name)
	}
	if p.Window <= 0 {
		return fmt.Errorf("policy %q: window must be positive", p.Name)
	}
	return nil
}

// Result is the admission decision for one request.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long the caller should wait before the window resets,
// rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	wait := r.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return (wait + time.Second - time.Nanosecond).Truncate(time.Second)
}

// CounterStore atomically increments the counter for key, opening a new
// window when none is active, and reports the count and when the window ends.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// Limiter applies policies against a CounterStore.
type Limiter struct {
	store CounterStore
}

func New(store CounterStore) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	return &Limiter{store: store}, nil
}

// Check counts one request for key under policy.
func (l *Limiter) Check(ctx context.Context, key string, policy Policy) (Result, error) {
	if err := policy.validate(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(key) == "" {
		return Result{}, errors.New("rate limit key is required")
	}

	scoped := key
	if policy.Name != "" {
		scoped = policy.Name + ":" + key
	}

	count, resetAt, err := l.store.Increment(ctx, scoped, policy.Window)
	if err != nil {
		return Result{}, fmt.Errorf("increment %q: %w", scoped, err)
	}

	remaining := policy.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(policy.MaxRequests),
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
