package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter counts admitted requests over a trailing time
// window with per-request precision.
//
// Each admitted request appends one timestamp; Count reports how many
// timestamps still fall inside [now-window, now]. Because timestamps are
// appended in non-decreasing order, eviction only ever inspects the front
// of the log, and each entry is evicted at most once, so cleanup is
// amortized O(1) per call.
//
// This gives a hard ceiling a token bucket cannot: a caller pacing
// requests to exactly match the refill rate slips past a bucket forever,
// but the window counts every admitted request against the cap.
//
// # Thread Safety
//
// SlidingWindowCounter is safe for concurrent use; append+eviction and
// eviction+count each run as a single critical section.
type SlidingWindowCounter struct {
	window     time.Duration
	timestamps []time.Time // Non-decreasing; evicted from the front
	mu         sync.Mutex

	now func() time.Time // Injectable clock for tests
}

// NewSlidingWindowCounter creates a counter over the given window length.
//
// Example:
//
//	minute := NewSlidingWindowCounter(time.Minute)
//	day := NewSlidingWindowCounter(24 * time.Hour)
func NewSlidingWindowCounter(window time.Duration) *SlidingWindowCounter {
	return newSlidingWindowCounter(window, time.Now)
}

func newSlidingWindowCounter(window time.Duration, now func() time.Time) *SlidingWindowCounter {
	return &SlidingWindowCounter{
		window: window,
		now:    now,
	}
}

// Add records a request at the given timestamp and evicts entries that
// have left the window.
func (sw *SlidingWindowCounter) Add(t time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.timestamps = append(sw.timestamps, t)
	sw.evictLocked()
}

// AddNow records a request at the current time.
func (sw *SlidingWindowCounter) AddNow() {
	sw.Add(sw.now())
}

// Count evicts expired entries and returns the number of requests still
// inside the window.
func (sw *SlidingWindowCounter) Count() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.evictLocked()
	return len(sw.timestamps)
}

// evictLocked drops timestamps older than now-window from the front of
// the log. Caller must hold the lock.
func (sw *SlidingWindowCounter) evictLocked() {
	cutoff := sw.now().Add(-sw.window)

	i := 0
	for i < len(sw.timestamps) && sw.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		// Copy survivors down so the backing array does not pin evicted
		// entries for the lifetime of the slice.
		n := copy(sw.timestamps, sw.timestamps[i:])
		sw.timestamps = sw.timestamps[:n]
	}
}
