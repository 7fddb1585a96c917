// Package ratelimit implements per-key admission control with token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Bucket is a continuous (fractional-token) token bucket.
// Tokens stay within [0, capacity]; refill is proportional to elapsed time.
type Bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	evicted    bool // set once the bucket is dropped from a Limiter's registry
}

// NewBucket creates a full bucket whose refill clock starts at now.
func NewBucket(capacity, refillRate float64, now time.Time) *Bucket {
	return &Bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     capacity,
		lastRefill: now,
	}
}

// Consume refills the bucket for the time elapsed since the last refill and
// takes one token if at least one is available.
func (b *Bucket) Consume(now time.Time) bool {
	allowed, _ := b.consume(now)
	return allowed
}

// consume is Consume that also reports whether the bucket is still live.
// An evicted bucket is left untouched so the caller can retry on a fresh one.
func (b *Bucket) consume(now time.Time) (allowed, live bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.evicted {
		return false, false
	}
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true, true
	}
	return false, true
}

// Tokens returns the token count as of now without consuming.
func (b *Bucket) Tokens(now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	return b.tokens
}

// tryEvict marks the bucket evicted if it would hold capacity tokens at now.
func (b *Bucket) tryEvict(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tokens+b.elapsed(now)*b.refillRate >= b.capacity {
		b.evicted = true
	}
	return b.evicted
}

// refill must be called with b.mu held.
func (b *Bucket) refill(now time.Time) {
	b.tokens = math.Min(b.capacity, b.tokens+b.elapsed(now)*b.refillRate)
	// A clock that steps backwards must not rewind the refill point.
	if now.After(b.lastRefill) {
		b.lastRefill = now
	}
}

// elapsed returns non-negative seconds since the last refill.
func (b *Bucket) elapsed(now time.Time) float64 {
	d := now.Sub(b.lastRefill).Seconds()
	if d < 0 {
		return 0
	}
	return d
}
