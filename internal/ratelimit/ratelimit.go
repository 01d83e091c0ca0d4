// Package ratelimit provides per-client token-bucket rate limiting.
//
// Buckets live in process memory for the lifetime of the process and are not
// synchronized across instances: under horizontal scale-out each instance
// enforces its own quota independently. This is the intended trade-off;
// Limiter is an interface so a distributed implementation can be swapped in
// without changing call sites.
package ratelimit

import (
	"sync"
	"time"
)

// Limits holds a client's bucket parameters. A client with any parameter
// unset is exempt from rate limiting entirely.
type Limits struct {
	// BucketSize is the maximum number of tokens the bucket can hold.
	BucketSize int64
	// RefillAmount is the number of tokens added per refill interval.
	RefillAmount int64
	// RefillInterval is the time between refills.
	RefillInterval time.Duration
}

// Enabled reports whether all bucket parameters are configured.
func (l Limits) Enabled() bool {
	return l.BucketSize > 0 && l.RefillAmount > 0 && l.RefillInterval > 0
}

// Limiter enforces per-client quotas.
type Limiter interface {
	// Take attempts to consume n tokens from the client's bucket, creating
	// the bucket full on first use. Returns false, without consuming
	// anything, if fewer than n tokens are available.
	Take(clientID string, limits Limits, n int64) bool
}

// bucket is a single client's token bucket.
type bucket struct {
	mu             sync.Mutex
	tokens         int64
	size           int64
	refillAmount   int64
	refillInterval time.Duration
	lastRefill     time.Time
}

// take refills based on whole elapsed intervals, then consumes n tokens
// or refuses without mutating the count.
func (b *bucket) take(n int64, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill)
	if elapsed >= b.refillInterval {
		intervals := int64(elapsed / b.refillInterval)

		b.tokens += intervals * b.refillAmount
		if b.tokens > b.size {
			b.tokens = b.size
		}

		// Advance by the consumed whole intervals only, so partial
		// progress toward the next refill is preserved.
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * b.refillInterval)
	}

	if b.tokens < n {
		return false
	}

	b.tokens -= n
	return true
}

// memoryLimiter implements Limiter with a process-wide bucket map.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New creates an in-memory Limiter.
func New() Limiter {
	return &memoryLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Take consumes n tokens from the client's bucket, lazily creating it full.
func (m *memoryLimiter) Take(clientID string, limits Limits, n int64) bool {
	if !limits.Enabled() {
		return true
	}

	now := m.now()

	m.mu.Lock()
	b, ok := m.buckets[clientID]
	if !ok {
		b = &bucket{
			tokens:         limits.BucketSize,
			size:           limits.BucketSize,
			refillAmount:   limits.RefillAmount,
			refillInterval: limits.RefillInterval,
			lastRefill:     now,
		}
		m.buckets[clientID] = b
	}
	m.mu.Unlock()

	return b.take(n, now)
}
