// Package ratelimit implements a fixed-window request limiter over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store holds expiring counters.
type Store interface {
	// Increment adds one to key, creating it with the given ttl when absent
	// or expired, and returns the new value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value of key, or 0 when absent or expired.
	Get(ctx context.Context, key string) (int64, error)
}

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter allows at most limit events per key in each window. Windows are
// aligned to multiples of the window length.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithPrefix namespaces counter keys.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// New returns a limiter. limit <= 0 disables limiting.
func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured events per window.
func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) bounds() (now, reset time.Time) {
	now = l.now()
	return now, now.Truncate(l.window).Add(l.window)
}

func (l *Limiter) key(key string, reset time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, reset.Add(-l.window).Unix())
}

// Allow records one event for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	now, reset := l.bounds()
	n, err := l.store.Increment(ctx, l.key(key, reset), reset.Sub(now))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return l.decide(n, now, reset, n <= int64(l.limit)), nil
}

// Peek reports the state of key without recording an event.
func (l *Limiter) Peek(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	now, reset := l.bounds()
	n, err := l.store.Get(ctx, l.key(key, reset))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return l.decide(n, now, reset, n < int64(l.limit)), nil
}

func (l *Limiter) decide(n int64, now, reset time.Time, allowed bool) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: max(0, l.limit-int(n)),
		ResetAt:   reset,
	}
	if !allowed {
		d.RetryAfter = reset.Sub(now)
	}
	return d
}
