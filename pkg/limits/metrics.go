package limits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the limits package.
type Metrics struct {
	// Admission checks
	checks *prometheus.CounterVec
	hits   *prometheus.CounterVec

	// Identifier state
	trackedIdentifiers prometheus.Gauge
	sweptIdentifiers   prometheus.Counter

	// Check latency
	checkDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance registered with the given
// registerer. Tests pass a private prometheus.NewRegistry to avoid
// duplicate registration on the default registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptgate_limits_checks_total",
				Help: "Total number of admission checks performed",
			},
			[]string{"result"},
		),

		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptgate_limits_denials_total",
				Help: "Total number of denied admission checks by limit layer",
			},
			[]string{"scope"},
		),

		trackedIdentifiers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "promptgate_limits_tracked_identifiers",
				Help: "Number of identifiers currently holding limiting state",
			},
		),

		sweptIdentifiers: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "promptgate_limits_swept_identifiers_total",
				Help: "Total number of idle identifiers evicted by the sweeper",
			},
		),

		checkDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "promptgate_limits_check_duration_seconds",
				Help:    "Duration of admission checks in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),
	}
}

// RecordCheck records an admission check and, when denied, the layer
// that denied it.
func (m *Metrics) RecordCheck(allowed bool, scope string) {
	result := "allowed"
	if !allowed {
		result = "denied"
		m.hits.WithLabelValues(scope).Inc()
	}
	m.checks.WithLabelValues(result).Inc()
}

// UpdateTrackedIdentifiers updates the tracked identifier gauge.
func (m *Metrics) UpdateTrackedIdentifiers(count int) {
	m.trackedIdentifiers.Set(float64(count))
}

// RecordSweep records identifiers removed by an idle sweep.
func (m *Metrics) RecordSweep(removed int) {
	m.sweptIdentifiers.Add(float64(removed))
}

// RecordCheckDuration records the duration of an admission check in
// seconds.
func (m *Metrics) RecordCheckDuration(seconds float64) {
	m.checkDuration.Observe(seconds)
}
