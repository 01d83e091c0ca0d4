package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestLimiter returns a limiter with a controllable clock.
func newTestLimiter(start time.Time) (*memoryLimiter, *time.Time) {
	current := start
	limiter := &memoryLimiter{
		buckets: make(map[string]*bucket),
		now:     func() time.Time { return current },
	}
	return limiter, &current
}

func TestLimitsEnabled(t *testing.T) {
	assert.True(t, Limits{BucketSize: 5, RefillAmount: 5, RefillInterval: 10 * time.Second}.Enabled())
	assert.False(t, Limits{RefillAmount: 5, RefillInterval: 10 * time.Second}.Enabled())
	assert.False(t, Limits{BucketSize: 5, RefillInterval: 10 * time.Second}.Enabled())
	assert.False(t, Limits{BucketSize: 5, RefillAmount: 5}.Enabled())
	assert.False(t, Limits{}.Enabled())
}

func TestTakeExemptWhenUnconfigured(t *testing.T) {
	limiter := New()

	// No limits configured: always allowed, no bucket state kept
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Take("client-1", Limits{}, 1))
	}
}

func TestTakeDrainAndDiscreteRefill(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter, clock := newTestLimiter(start)

	limits := Limits{BucketSize: 5, RefillAmount: 5, RefillInterval: 10 * time.Second}

	// 5 consecutive takes succeed, the 6th fails within the interval
	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Take("client-1", limits, 1), "take %d", i+1)
	}
	assert.False(t, limiter.Take("client-1", limits, 1))

	// Partway through the interval: still refused
	*clock = start.Add(9 * time.Second)
	assert.False(t, limiter.Take("client-1", limits, 1))

	// After one full interval: exactly 5 more succeed
	*clock = start.Add(10 * time.Second)
	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Take("client-1", limits, 1), "post-refill take %d", i+1)
	}
	assert.False(t, limiter.Take("client-1", limits, 1))
}

func TestTakeRefillCappedAtBucketSize(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter, clock := newTestLimiter(start)

	limits := Limits{BucketSize: 3, RefillAmount: 3, RefillInterval: time.Second}

	// Drain one token, then let many intervals pass
	assert.True(t, limiter.Take("client-1", limits, 1))
	*clock = start.Add(time.Minute)

	// Refill is capped at size: 3 takes succeed, the 4th fails
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Take("client-1", limits, 1))
	}
	assert.False(t, limiter.Take("client-1", limits, 1))
}

func TestTakePreservesPartialIntervalProgress(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter, clock := newTestLimiter(start)

	limits := Limits{BucketSize: 1, RefillAmount: 1, RefillInterval: 10 * time.Second}

	assert.True(t, limiter.Take("client-1", limits, 1))

	// 15s elapsed: one whole interval consumed, lastRefill advances by 10s
	*clock = start.Add(15 * time.Second)
	assert.True(t, limiter.Take("client-1", limits, 1))

	// 5s later the next whole interval (relative to the advanced lastRefill)
	// completes, so the bucket refills again
	*clock = start.Add(20 * time.Second)
	assert.True(t, limiter.Take("client-1", limits, 1))
}

func TestTakeRefusalDoesNotMutateTokens(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter, _ := newTestLimiter(start)

	limits := Limits{BucketSize: 5, RefillAmount: 5, RefillInterval: 10 * time.Second}

	assert.True(t, limiter.Take("client-1", limits, 3))

	// 2 tokens left: a request for 3 is refused and leaves them intact
	assert.False(t, limiter.Take("client-1", limits, 3))
	assert.True(t, limiter.Take("client-1", limits, 2))
}

func TestTakeIndependentBucketsPerClient(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter, _ := newTestLimiter(start)

	limits := Limits{BucketSize: 1, RefillAmount: 1, RefillInterval: time.Minute}

	assert.True(t, limiter.Take("client-1", limits, 1))
	assert.False(t, limiter.Take("client-1", limits, 1))

	// A different client gets its own full bucket
	assert.True(t, limiter.Take("client-2", limits, 1))
}

func TestTakeConcurrent(t *testing.T) {
	limiter := New()
	limits := Limits{BucketSize: 50, RefillAmount: 50, RefillInterval: time.Hour}

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- limiter.Take("client-1", limits, 1)
		}()
	}
	wg.Wait()
	close(allowed)

	granted := 0
	for ok := range allowed {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 50, granted, "exactly bucket-size requests may pass")
}
