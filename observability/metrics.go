package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrecompileMetrics records token-precompile dispatch activity.
type PrecompileMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	gasUsed *prometheus.CounterVec
}

var (
	precompileOnce     sync.Once
	precompileRegistry *PrecompileMetrics
)

// Precompile returns the lazily-initialised precompile metrics registry.
func Precompile() *PrecompileMetrics {
	precompileOnce.Do(func() {
		precompileRegistry = &PrecompileMetrics{
			calls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "helio",
				Subsystem: "precompile",
				Name:      "calls_total",
				Help:      "Total token precompile calls segmented by selector and outcome.",
			}, []string{"selector", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "helio",
				Subsystem: "precompile",
				Name:      "call_duration_seconds",
				Help:      "Latency distribution for token precompile calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"selector"}),
			gasUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "helio",
				Subsystem: "precompile",
				Name:      "gas_used_total",
				Help:      "Gas charged to token precompile calls segmented by selector.",
			}, []string{"selector"}),
		}
		prometheus.MustRegister(
			precompileRegistry.calls,
			precompileRegistry.latency,
			precompileRegistry.gasUsed,
		)
	})
	return precompileRegistry
}

// ObserveCall records one completed precompile dispatch.
func (m *PrecompileMetrics) ObserveCall(selector, outcome string, gas uint64, duration time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(selector, outcome).Inc()
	m.latency.WithLabelValues(selector).Observe(duration.Seconds())
	m.gasUsed.WithLabelValues(selector).Add(float64(gas))
}
