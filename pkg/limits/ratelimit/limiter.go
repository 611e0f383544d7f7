package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// globalBurstFactor scales BurstSize up to the capacity of the
// service-wide bucket, so the global gate only binds under aggregate
// load well beyond any single identifier's allowance.
const globalBurstFactor = 100

// Window lengths for the three counting tiers.
const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
	dayWindow    = 24 * time.Hour
)

// Denial reasons for the two bucket layers. Window denials carry the
// configured limit and are formatted per check.
const (
	reasonGlobal = "Global rate limit exceeded"
	reasonBurst  = "Too many requests (burst limit)"
)

// entry holds the per-identifier limiting state: one token bucket for
// burst smoothing and three sliding windows for the hard tier ceilings.
type entry struct {
	bucket *TokenBucket
	minute *SlidingWindowCounter
	hour   *SlidingWindowCounter
	day    *SlidingWindowCounter

	// lastSeen is the Unix nano timestamp of the most recent check,
	// read by the idle sweeper without taking any entry lock.
	lastSeen atomic.Int64
}

// Limiter is the layered admission controller.
//
// It owns one global token bucket gating aggregate load across all
// identifiers, plus lazily created per-identifier state. A check walks
// the layers in fixed order -- global bucket, identifier bucket, minute,
// hour, day window -- and short-circuits at the first violation. Failed
// checks consume no window quota; whether they consume bucket tokens
// depends on the configured Strategy.
//
// Limiters are constructed explicitly and passed to their consumers.
// There is deliberately no package-level shared instance: hidden global
// state leaks across tests and forbids running two differently
// configured limiters in one process.
type Limiter struct {
	config Config
	global *TokenBucket

	// mu guards the entries map only. It is held for the lazy
	// check-and-insert and for sweep/reset, never while a bucket or
	// window operation runs, so independent identifiers proceed in
	// parallel.
	mu      sync.Mutex
	entries map[string]*entry

	// Decision counters, exposed via Counters() for an observability
	// layer to export.
	allowed      atomic.Int64
	deniedGlobal atomic.Int64
	deniedBurst  atomic.Int64
	deniedMinute atomic.Int64
	deniedHour   atomic.Int64
	deniedDay    atomic.Int64

	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter with the given configuration.
//
// The configuration is expected to be validated (Config.Validate)
// before construction; the limiter itself performs no call-time input
// validation.
//
// Example:
//
//	limiter := NewLimiter(Config{
//	    RequestsPerMinute: 60,
//	    RequestsPerHour:   1000,
//	    RequestsPerDay:    10000,
//	    BurstSize:         10,
//	})
func NewLimiter(config Config) *Limiter {
	if config.Strategy == "" {
		config.Strategy = StrategyConsume
	}

	l := &Limiter{
		config:  config,
		entries: make(map[string]*entry),
		logger:  slog.Default().With("component", "limits.ratelimit"),
		now:     time.Now,
	}
	l.global = newTokenBucket(config.BurstSize*globalBurstFactor, l.refillRate(), l.now)

	l.logger.Info("rate limiter initialized",
		"requests_per_minute", config.RequestsPerMinute,
		"requests_per_hour", config.RequestsPerHour,
		"requests_per_day", config.RequestsPerDay,
		"burst_size", config.BurstSize,
		"strategy", string(config.Strategy),
	)

	return l
}

// Check decides whether a request of the given cost may proceed for the
// identifier. When checkGlobal is false the service-wide bucket is
// skipped and only per-identifier limits apply.
//
// The layers are sequential gates, not independent evaluations: passing
// the burst check implies nothing about the window checks, and the
// denial reasons are mutually exclusive with global > burst > minute >
// hour > day priority.
func (l *Limiter) Check(identifier string, cost int, checkGlobal bool) Result {
	if l.config.Strategy == StrategyPrecheck {
		return l.checkPrecheck(identifier, cost, checkGlobal)
	}
	return l.checkConsume(identifier, cost, checkGlobal)
}

// checkConsume is the consume-as-you-go decision: each bucket layer
// spends its tokens as it is checked. A request denied by a window has
// therefore already paid the global and burst buckets; a request denied
// by the global bucket has paid nothing per-identifier, since global
// overload is not the identifier's fault.
func (l *Limiter) checkConsume(identifier string, cost int, checkGlobal bool) Result {
	if checkGlobal && !l.global.Take(cost) {
		return l.denyGlobal(identifier, cost)
	}

	e := l.entry(identifier)
	e.lastSeen.Store(l.now().UnixNano())

	if !e.bucket.Take(cost) {
		return l.denyBurst(identifier, e, cost)
	}

	if r, denied := l.checkWindows(identifier, e); denied {
		return r
	}

	l.commitWindows(e)
	l.allowed.Add(1)
	return Result{Allowed: true}
}

// checkPrecheck peeks at every layer and commits bucket tokens only when
// all layers pass. Two concurrent requests can both pass the peek before
// either commits, so the commit re-checks the buckets and treats a
// failed commit as the corresponding denial, refunding any token already
// taken.
func (l *Limiter) checkPrecheck(identifier string, cost int, checkGlobal bool) Result {
	e := l.entry(identifier)
	e.lastSeen.Store(l.now().UnixNano())

	if checkGlobal && !l.global.CanTake(cost) {
		return l.denyGlobal(identifier, cost)
	}
	if !e.bucket.CanTake(cost) {
		return l.denyBurst(identifier, e, cost)
	}
	if r, denied := l.checkWindows(identifier, e); denied {
		return r
	}

	// Commit phase. Identifier bucket first so a lost race against the
	// global bucket can be refunded locally.
	if !e.bucket.Take(cost) {
		return l.denyBurst(identifier, e, cost)
	}
	if checkGlobal && !l.global.Take(cost) {
		e.bucket.refund(cost)
		return l.denyGlobal(identifier, cost)
	}

	l.commitWindows(e)
	l.allowed.Add(1)
	return Result{Allowed: true}
}

// checkWindows evaluates the three window ceilings in ascending
// granularity. Returns the denial and true at the first tier at or above
// its limit.
func (l *Limiter) checkWindows(identifier string, e *entry) (Result, bool) {
	if e.minute.Count() >= l.config.RequestsPerMinute {
		l.deniedMinute.Add(1)
		reason := fmt.Sprintf("Rate limit: %d requests per minute", l.config.RequestsPerMinute)
		l.warnDenied(identifier, reason, minuteWindow)
		return Result{Reason: reason, Scope: ScopeMinute, RetryAfter: minuteWindow}, true
	}
	if e.hour.Count() >= l.config.RequestsPerHour {
		l.deniedHour.Add(1)
		reason := fmt.Sprintf("Rate limit: %d requests per hour", l.config.RequestsPerHour)
		l.warnDenied(identifier, reason, hourWindow)
		return Result{Reason: reason, Scope: ScopeHour, RetryAfter: hourWindow}, true
	}
	if e.day.Count() >= l.config.RequestsPerDay {
		l.deniedDay.Add(1)
		reason := fmt.Sprintf("Rate limit: %d requests per day", l.config.RequestsPerDay)
		l.warnDenied(identifier, reason, dayWindow)
		return Result{Reason: reason, Scope: ScopeDay, RetryAfter: dayWindow}, true
	}
	return Result{}, false
}

// commitWindows records the admission into all three windows at one
// shared timestamp. This is the only success-path mutation besides the
// bucket consumption already applied.
func (l *Limiter) commitWindows(e *entry) {
	now := l.now()
	e.minute.Add(now)
	e.hour.Add(now)
	e.day.Add(now)
}

func (l *Limiter) denyGlobal(identifier string, cost int) Result {
	wait := l.global.WaitTime(cost)
	l.deniedGlobal.Add(1)
	l.warnDenied(identifier, reasonGlobal, wait)
	return Result{Reason: reasonGlobal, Scope: ScopeGlobal, RetryAfter: wait}
}

func (l *Limiter) denyBurst(identifier string, e *entry, cost int) Result {
	wait := e.bucket.WaitTime(cost)
	l.deniedBurst.Add(1)
	l.warnDenied(identifier, reasonBurst, wait)
	return Result{Reason: reasonBurst, Scope: ScopeBurst, RetryAfter: wait}
}

func (l *Limiter) warnDenied(identifier, reason string, retryAfter time.Duration) {
	l.logger.Warn("request denied",
		"identifier", identifier,
		"reason", reason,
		"retry_after", retryAfter,
	)
}

// Status returns current window usage for the identifier. An identifier
// with no recorded state reports zero usage against the configured
// limits.
func (l *Limiter) Status(identifier string) Status {
	l.mu.Lock()
	e, ok := l.entries[identifier]
	l.mu.Unlock()

	if !ok {
		return Status{
			Minute: TierUsage{Limit: l.config.RequestsPerMinute, Remaining: l.config.RequestsPerMinute},
			Hour:   TierUsage{Limit: l.config.RequestsPerHour, Remaining: l.config.RequestsPerHour},
			Day:    TierUsage{Limit: l.config.RequestsPerDay, Remaining: l.config.RequestsPerDay},
		}
	}

	return Status{
		Minute: tierUsage(e.minute.Count(), l.config.RequestsPerMinute),
		Hour:   tierUsage(e.hour.Count(), l.config.RequestsPerHour),
		Day:    tierUsage(e.day.Count(), l.config.RequestsPerDay),
	}
}

func tierUsage(used, limit int) TierUsage {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return TierUsage{Used: used, Limit: limit, Remaining: remaining}
}

// Reset removes all state for the identifier, returning it to the
// never-seen condition. The global bucket is unaffected.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	delete(l.entries, identifier)
	l.mu.Unlock()

	l.logger.Info("rate limits reset", "identifier", identifier)
}

// SweepIdle removes identifiers whose last check is older than ttl and
// returns how many were removed. Bounds map growth for deployments with
// high identifier churn; typically driven by a scheduler rather than
// called inline.
func (l *Limiter) SweepIdle(ttl time.Duration) int {
	cutoff := l.now().Add(-ttl).UnixNano()

	l.mu.Lock()
	removed := 0
	for id, e := range l.entries {
		if e.lastSeen.Load() < cutoff {
			delete(l.entries, id)
			removed++
		}
	}
	l.mu.Unlock()

	if removed > 0 {
		l.logger.Info("swept idle identifiers", "removed", removed, "ttl", ttl)
	}
	return removed
}

// TrackedIdentifiers returns the number of identifiers currently holding
// limiting state.
func (l *Limiter) TrackedIdentifiers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Counters returns a snapshot of the decision counters since
// construction.
func (l *Limiter) Counters() Counters {
	return Counters{
		Allowed:      l.allowed.Load(),
		DeniedGlobal: l.deniedGlobal.Load(),
		DeniedBurst:  l.deniedBurst.Load(),
		DeniedMinute: l.deniedMinute.Load(),
		DeniedHour:   l.deniedHour.Load(),
		DeniedDay:    l.deniedDay.Load(),
	}
}

// Config returns the limiter's configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// entry returns the identifier's limiting state, creating it on first
// use. The map lock is held only for the check-and-insert.
func (l *Limiter) entry(identifier string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		e = &entry{
			bucket: newTokenBucket(l.config.BurstSize, l.refillRate(), l.now),
			minute: newSlidingWindowCounter(minuteWindow, l.now),
			hour:   newSlidingWindowCounter(hourWindow, l.now),
			day:    newSlidingWindowCounter(dayWindow, l.now),
		}
		l.entries[identifier] = e
	}
	return e
}

// refillRate is the shared sustained rate in tokens per second for both
// the global and per-identifier buckets.
func (l *Limiter) refillRate() float64 {
	return float64(l.config.RequestsPerMinute) / 60.0
}
