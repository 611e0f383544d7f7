// Package ratelimit implements the admission-control core for promptgate.
//
// # Overview
//
// The package combines two rate limiting algorithms into a layered
// admission decision:
//
//   - Token Bucket: burst-tolerant smoothing with a continuous refill rate
//   - Sliding Window Counter: exact request counting over trailing
//     minute/hour/day windows
//
// A Limiter owns one global token bucket shared by all callers plus, per
// identifier, one token bucket and three sliding windows. Checks are
// evaluated global bucket first, then the identifier's bucket, then the
// windows in ascending granularity, short-circuiting at the first
// violation.
//
// # Token Bucket
//
// The token bucket allows bursts up to the bucket capacity while
// maintaining an average rate over time:
//
//	bucket := ratelimit.NewTokenBucket(10, 1.0) // 10 capacity, 1 token/sec
//	if bucket.Take(1) {
//	    // Request allowed
//	} else {
//	    wait := bucket.WaitTime(1) // How long until 1 token is available
//	}
//
// # Sliding Window Counter
//
// The sliding window counter records one timestamp per admitted request
// and reports how many fall inside the trailing window:
//
//	window := ratelimit.NewSlidingWindowCounter(time.Minute)
//	window.Add(time.Now())
//	if window.Count() >= 60 {
//	    // Per-minute ceiling reached
//	}
//
// # Limiter
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    RequestsPerMinute: 60,
//	    RequestsPerHour:   1000,
//	    RequestsPerDay:    10000,
//	    BurstSize:         10,
//	})
//
//	result := limiter.Check("api-key-123", 1, true)
//	if !result.Allowed {
//	    // result.Reason, result.RetryAfter
//	}
//
// Denial is a value, never an error: every check returns immediately with
// a decision, and backpressure is expressed solely through the RetryAfter
// field of the result.
//
// # Thread Safety
//
// All types are safe for concurrent use. Each bucket and window carries
// its own mutex guarding its read-modify-write cycle; the Limiter holds a
// separate lock over the identifier map only during lazy creation, so
// traffic for independent identifiers never serializes through a single
// critical section.
package ratelimit
