// Package limits coordinates rate limiting for admission control.
//
// # Overview
//
// The limits package wraps the ratelimit core with the operational
// concerns a running service needs:
//
//   - Prometheus metrics for checks, denials, and latency
//   - Scheduled eviction of idle identifier state
//   - Atomic replacement of the limiter on configuration reload
//
// # Architecture
//
// The package is organized around two types:
//
//   - Manager: the service-facing API for checks, status, and resets
//   - Metrics: Prometheus collectors owned by the manager
//
// The algorithmic core lives in the ratelimit sub-package and carries
// no dependency on this package.
//
// # Usage
//
//	metrics := limits.NewMetrics(prometheus.DefaultRegisterer)
//	manager, err := limits.NewManager(cfg, metrics)
//	if err != nil {
//	    return err
//	}
//	manager.Start(ctx)
//	defer manager.Stop()
//
//	result := manager.Check(ctx, "api-key-123", 1)
//	if !result.Allowed {
//	    // Deny the request, relay result.RetryAfter
//	}
//
// # Thread Safety
//
// All Manager operations are safe for concurrent use. Configuration
// reloads swap the underlying limiter atomically; in-flight checks
// finish against the limiter they started with.
package limits
