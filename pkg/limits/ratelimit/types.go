package ratelimit

import (
	"fmt"
	"time"
)

// Strategy selects how bucket consumption interacts with later checks in
// the layered decision.
type Strategy string

const (
	// StrategyConsume consumes from each bucket as its layer is checked.
	// A request that passes the global bucket but fails a later layer has
	// still spent global tokens. This matches the historical behavior and
	// keeps the global bucket an accurate measure of attempted load.
	StrategyConsume Strategy = "consume"

	// StrategyPrecheck peeks at every layer first and commits tokens only
	// when all layers pass. Fairer to callers that would be denied anyway,
	// at the cost of a small overshoot window under contention: two
	// requests can both pass the peek before either commits.
	StrategyPrecheck Strategy = "precheck"
)

// Scope identifies which layer of the decision produced a denial.
// It is used as a metrics label and in status reporting.
type Scope string

const (
	// ScopeGlobal is the service-wide token bucket shared by all identifiers.
	ScopeGlobal Scope = "global"

	// ScopeBurst is the per-identifier token bucket.
	ScopeBurst Scope = "burst"

	// ScopeMinute is the per-identifier 60-second sliding window.
	ScopeMinute Scope = "minute"

	// ScopeHour is the per-identifier 3600-second sliding window.
	ScopeHour Scope = "hour"

	// ScopeDay is the per-identifier 86400-second sliding window.
	ScopeDay Scope = "day"
)

// Config contains configuration for a Limiter. All limits are positive
// integers; Validate rejects non-positive values so that call sites never
// have to guard against malformed limits.
type Config struct {
	// RequestsPerMinute caps admitted requests per identifier over a
	// trailing 60-second window. Also sets the refill rate of both the
	// global and per-identifier buckets (RequestsPerMinute/60 tokens/sec).
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerHour caps admitted requests per identifier over a
	// trailing 3600-second window.
	RequestsPerHour int `yaml:"requests_per_hour"`

	// RequestsPerDay caps admitted requests per identifier over a
	// trailing 86400-second window.
	RequestsPerDay int `yaml:"requests_per_day"`

	// BurstSize is the capacity of each per-identifier token bucket. The
	// global bucket's capacity is BurstSize * globalBurstFactor.
	BurstSize int `yaml:"burst_size"`

	// CostPerRequest is the default token cost of one request when the
	// caller does not supply an explicit cost.
	CostPerRequest int `yaml:"cost_per_request"`

	// Strategy selects consume-as-you-go or precheck-then-commit
	// behavior. Empty defaults to StrategyConsume.
	Strategy Strategy `yaml:"strategy"`
}

// DefaultConfig returns the configuration used when none is supplied.
// The values mirror a moderate interactive workload: one request per
// second sustained, bursts of ten.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		RequestsPerHour:   1000,
		RequestsPerDay:    10000,
		BurstSize:         10,
		CostPerRequest:    1,
		Strategy:          StrategyConsume,
	}
}

// Validate checks that all limits are positive and the strategy is known.
// Tier consistency (minute*60 <= hour, hour*24 <= day) is deliberately
// not enforced: operators may configure inconsistent tiers, e.g. a strict
// daily cap with a generous minute rate.
func (c Config) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}
	if c.RequestsPerHour <= 0 {
		return fmt.Errorf("requests_per_hour must be positive, got %d", c.RequestsPerHour)
	}
	if c.RequestsPerDay <= 0 {
		return fmt.Errorf("requests_per_day must be positive, got %d", c.RequestsPerDay)
	}
	if c.BurstSize <= 0 {
		return fmt.Errorf("burst_size must be positive, got %d", c.BurstSize)
	}
	if c.CostPerRequest <= 0 {
		return fmt.Errorf("cost_per_request must be positive, got %d", c.CostPerRequest)
	}
	switch c.Strategy {
	case "", StrategyConsume, StrategyPrecheck:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	return nil
}

// Result contains the outcome of a single admission check.
type Result struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason explains why the request was denied (if Allowed=false).
	Reason string

	// Scope identifies the layer that denied the request (if Allowed=false).
	Scope Scope

	// RetryAfter is the minimum wait before a retry can succeed. Bucket
	// denials compute it from the refill rate; window denials report the
	// fixed window length.
	RetryAfter time.Duration
}

// TierUsage reports usage against one window tier for an identifier.
type TierUsage struct {
	// Used is the number of admitted requests currently inside the window.
	Used int `json:"used"`

	// Limit is the configured ceiling for the window.
	Limit int `json:"limit"`

	// Remaining is max(0, Limit-Used).
	Remaining int `json:"remaining"`
}

// Status reports current window usage for an identifier across all tiers.
// An identifier that has never been seen reports zero usage.
type Status struct {
	Minute TierUsage `json:"minute"`
	Hour   TierUsage `json:"hour"`
	Day    TierUsage `json:"day"`
}

// Counters is a snapshot of the limiter's decision counters since
// construction. The limiter itself emits nothing; an observability
// layer reads these and exports them however it likes.
type Counters struct {
	Allowed      int64
	DeniedGlobal int64
	DeniedBurst  int64
	DeniedMinute int64
	DeniedHour   int64
	DeniedDay    int64
}

// Denied returns the total denials across all scopes.
func (c Counters) Denied() int64 {
	return c.DeniedGlobal + c.DeniedBurst + c.DeniedMinute + c.DeniedHour + c.DeniedDay
}
