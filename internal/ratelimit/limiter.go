package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sipico/nlsql-gateway/internal/metrics"
)

// Defaults: 30 requests per minute with bursts up to 30.
const (
	DefaultCapacity   = 30
	DefaultRefillRate = 30.0 / 60.0
)

// Config holds bucket parameters shared by every key.
type Config struct {
	Capacity   float64
	RefillRate float64 // tokens per second
}

// DefaultConfig returns the 30 requests/minute configuration.
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity, RefillRate: DefaultRefillRate}
}

// Limiter owns the per-key bucket registry.
// The registry lock only guards bucket lookup and creation; each bucket has
// its own lock for the refill/consume critical section.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*Bucket
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source (useful for tests with simulated time).
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter with an empty bucket registry.
func New(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*Bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token from key's bucket, creating the bucket on first use.
func (l *Limiter) Allow(key string) bool {
	for {
		allowed, live := l.bucket(key).consume(l.now())
		if live {
			return allowed
		}
		// Lost a race with Sweep; the next lookup creates a fresh bucket.
	}
}

// Tokens returns the current token count for key, or capacity for an unseen key.
func (l *Limiter) Tokens(key string) float64 {
	l.mu.Lock()
	b, ok := l.buckets[key]
	l.mu.Unlock()
	if !ok {
		return l.cfg.Capacity
	}
	return b.Tokens(l.now())
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep removes buckets that would be full at the current time and returns
// how many were removed. A full bucket is indistinguishable from a freshly
// created one, so callers never observe an eviction.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.tryEvict(now) {
			delete(l.buckets, key)
			removed++
		}
	}
	metrics.SetBuckets(len(l.buckets))
	return removed
}

// Run sweeps idle buckets every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				logger.Debug("rate_limit.sweep", "removed", n, "remaining", l.Len())
			}
		}
	}
}

func (l *Limiter) bucket(key string) *Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = NewBucket(l.cfg.Capacity, l.cfg.RefillRate, l.now())
		l.buckets[key] = b
		metrics.SetBuckets(len(l.buckets))
	}
	return b
}
