package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket rate limiting algorithm.
//
// The bucket holds up to capacity tokens and refills continuously at
// refillRate tokens per second. Each admitted request removes its cost in
// tokens; a request whose cost exceeds the current level is rejected
// without blocking.
//
// Tokens are tracked as float64 so that sub-second refill accumulates:
// a bucket refilling at 1 token/sec gains half a token in 500ms rather
// than rounding down to zero.
//
// # Algorithm
//
//  1. Add elapsed-time * refillRate tokens (capped at capacity)
//  2. If the current level covers the request cost, subtract and allow
//  3. Otherwise reject; the only state change is the refill itself
//
// # Thread Safety
//
// TokenBucket is safe for concurrent use. Refill and consumption happen
// inside one critical section, so concurrent callers never observe a
// half-applied refill and the consumed totals are exact.
type TokenBucket struct {
	capacity   float64   // Maximum tokens in bucket
	tokens     float64   // Current available tokens
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	mu         sync.Mutex

	now func() time.Time // Injectable clock for tests
}

// NewTokenBucket creates a token bucket starting at full capacity.
//
// Parameters:
//   - capacity: Maximum number of tokens in the bucket (burst size)
//   - refillRate: Tokens added per second (sustained rate)
//
// Example:
//
//	// Burst of 10, refilling at 1 token/sec
//	bucket := NewTokenBucket(10, 1.0)
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

// newTokenBucket creates a bucket on an explicit clock. The Limiter uses
// this so every structure it owns shares one clock.
func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Take attempts to consume n tokens. It refills first, then consumes only
// if the full cost is covered; a failed Take changes no state beyond the
// refill. Never blocks.
//
// A non-positive n degenerates to always-allowed; callers are expected to
// pass positive costs.
func (tb *TokenBucket) Take(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= float64(n) {
		tb.tokens -= float64(n)
		return true
	}
	return false
}

// CanTake reports whether n tokens could be consumed right now, without
// consuming them. Used by the precheck strategy; the answer is only a
// hint under concurrency since another caller may consume in between.
func (tb *TokenBucket) CanTake(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens >= float64(n)
}

// WaitTime returns how long until n tokens will be available, assuming no
// other consumer intervenes. Returns 0 if the cost is already covered.
func (tb *TokenBucket) WaitTime(n int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= float64(n) {
		return 0
	}

	needed := float64(n) - tb.tokens
	return time.Duration(needed / tb.refillRate * float64(time.Second))
}

// Remaining returns the current token level after applying refill.
func (tb *TokenBucket) Remaining() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// refund returns n tokens to the bucket, capped at capacity. Used by the
// precheck strategy to undo a committed take after losing a commit race.
func (tb *TokenBucket) refund(n int) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens += float64(n)
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// refillLocked adds tokens proportional to elapsed time since the last
// refill, capped at capacity. Caller must hold the lock.
func (tb *TokenBucket) refillLocked() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}
