package limits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"promptgate/pkg/limits/ratelimit"
)

// Default housekeeping settings applied when the configuration leaves
// them unset.
const (
	defaultIdleTTL       = time.Hour
	defaultSweepSchedule = "@every 10m"
)

// Config contains configuration for the limits manager.
type Config struct {
	// RateLimit configures the underlying limiter.
	RateLimit ratelimit.Config

	// CheckGlobal enables the service-wide bucket on every check.
	CheckGlobal bool

	// IdleTTL is how long an identifier may go unseen before the
	// sweeper evicts its state. Zero selects the default of one hour.
	IdleTTL time.Duration

	// SweepSchedule is the cron expression driving idle eviction.
	// Empty selects the default of every ten minutes.
	SweepSchedule string
}

// Manager is the service-facing API for admission control.
//
// It wraps the ratelimit core with metrics, scheduled idle eviction,
// and atomic limiter replacement on configuration reload.
//
// # Example
//
//	manager, err := limits.NewManager(cfg, metrics)
//	if err != nil {
//	    return err
//	}
//	if err := manager.Start(ctx); err != nil {
//	    return err
//	}
//	defer manager.Stop()
//
//	result := manager.Check(ctx, "api-key-123", 1)
//	if !result.Allowed {
//	    // Deny with result.Reason and result.RetryAfter
//	}
type Manager struct {
	config  Config
	metrics *Metrics
	cron    *cron.Cron
	logger  *slog.Logger

	// mu guards limiter replacement on reload. Checks hold the read
	// lock only long enough to grab the current limiter; the check
	// itself runs outside the lock.
	mu      sync.RWMutex
	limiter *ratelimit.Limiter

	running bool
	runMu   sync.Mutex
}

// NewManager creates a new limits manager with the given configuration.
// The metrics instance may be shared with other components but is
// typically dedicated.
func NewManager(config Config, metrics *Metrics) (*Manager, error) {
	if err := config.RateLimit.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaultIdleTTL
	}
	if config.SweepSchedule == "" {
		config.SweepSchedule = defaultSweepSchedule
	}

	return &Manager{
		config:  config,
		metrics: metrics,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "limits.manager"),
		limiter: ratelimit.NewLimiter(config.RateLimit),
	}, nil
}

// Check decides whether a request of the given cost may proceed for
// the identifier. A non-positive cost falls back to the configured
// per-request cost.
//
// The context is accepted for interface consistency with the rest of
// the service; the check itself never blocks.
func (m *Manager) Check(ctx context.Context, identifier string, cost int) ratelimit.Result {
	_ = ctx

	limiter := m.currentLimiter()
	if cost <= 0 {
		cost = limiter.Config().CostPerRequest
	}

	start := time.Now()
	result := limiter.Check(identifier, cost, m.config.CheckGlobal)
	m.metrics.RecordCheckDuration(time.Since(start).Seconds())

	m.metrics.RecordCheck(result.Allowed, string(result.Scope))
	m.metrics.UpdateTrackedIdentifiers(limiter.TrackedIdentifiers())

	return result
}

// Status reports current window usage for the identifier without
// consuming anything.
func (m *Manager) Status(identifier string) ratelimit.Status {
	return m.currentLimiter().Status(identifier)
}

// Reset discards all limiting state for the identifier.
func (m *Manager) Reset(identifier string) {
	limiter := m.currentLimiter()
	limiter.Reset(identifier)
	m.metrics.UpdateTrackedIdentifiers(limiter.TrackedIdentifiers())
}

// Counters returns the decision counters of the current limiter.
// Counters reset when a configuration reload replaces the limiter.
func (m *Manager) Counters() ratelimit.Counters {
	return m.currentLimiter().Counters()
}

// TrackedIdentifiers returns the number of identifiers currently
// holding limiting state.
func (m *Manager) TrackedIdentifiers() int {
	return m.currentLimiter().TrackedIdentifiers()
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ApplyConfig replaces the limiter with one built from the new rate
// limit configuration. All accumulated usage state is discarded;
// identifiers start fresh against the new ceilings.
func (m *Manager) ApplyConfig(rateLimit ratelimit.Config) error {
	if err := rateLimit.Validate(); err != nil {
		return fmt.Errorf("invalid rate limit config: %w", err)
	}

	m.mu.Lock()
	m.config.RateLimit = rateLimit
	m.limiter = ratelimit.NewLimiter(rateLimit)
	m.mu.Unlock()

	m.metrics.UpdateTrackedIdentifiers(0)
	m.logger.Info("rate limit configuration replaced",
		"requests_per_minute", rateLimit.RequestsPerMinute,
		"requests_per_hour", rateLimit.RequestsPerHour,
		"requests_per_day", rateLimit.RequestsPerDay,
		"burst_size", rateLimit.BurstSize,
	)
	return nil
}

// Start begins scheduled idle eviction based on the configured cron
// expression. Stop is called automatically when the context is
// cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return nil
	}

	if _, err := cron.ParseStandard(m.config.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", m.config.SweepSchedule, err)
	}

	if _, err := m.cron.AddFunc(m.config.SweepSchedule, m.sweep); err != nil {
		return fmt.Errorf("failed to schedule idle sweep: %w", err)
	}

	m.cron.Start()
	m.running = true

	m.logger.Info("idle sweeper started",
		"schedule", m.config.SweepSchedule,
		"idle_ttl", m.config.IdleTTL,
	)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Stop halts scheduled idle eviction. Safe to call more than once.
func (m *Manager) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}

	ctx := m.cron.Stop()
	<-ctx.Done()
	m.running = false

	m.logger.Info("idle sweeper stopped")
}

// sweep evicts identifiers unseen for longer than the idle TTL.
func (m *Manager) sweep() {
	limiter := m.currentLimiter()
	removed := limiter.SweepIdle(m.config.IdleTTL)
	if removed > 0 {
		m.metrics.RecordSweep(removed)
	}
	m.metrics.UpdateTrackedIdentifiers(limiter.TrackedIdentifiers())
}

func (m *Manager) currentLimiter() *ratelimit.Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiter
}
