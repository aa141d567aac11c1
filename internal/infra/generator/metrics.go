package generator

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder records generation metrics. The indirection keeps
// Prometheus out of unit tests: inject a NoOpMetrics instead.
type MetricsRecorder interface {
	// RecordAttempt counts one provider call by result:
	// success, rate_limited, or error.
	RecordAttempt(result string)

	// RecordOutcome counts one finished generation by outcome kind.
	RecordOutcome(kind string)

	// RecordDuration records the wall time of one generation,
	// including backoff waits.
	RecordDuration(duration time.Duration)
}

// PrometheusGenerationMetrics records generation metrics to Prometheus.
type PrometheusGenerationMetrics struct {
	attemptCounter    *prometheus.CounterVec
	outcomeCounter    *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

var (
	generationMetricsInstance *PrometheusGenerationMetrics
	generationMetricsOnce     sync.Once
)

// getOrCreateCounterVec gets an existing counter vector or creates one.
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// getOrCreateHistogram gets an existing histogram or creates one.
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

// NewPrometheusGenerationMetrics returns the process-wide Prometheus
// recorder. A singleton avoids duplicate registration when several
// clients are constructed.
func NewPrometheusGenerationMetrics() *PrometheusGenerationMetrics {
	generationMetricsOnce.Do(func() {
		generationMetricsInstance = &PrometheusGenerationMetrics{
			attemptCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "stormbot_generation_attempts_total",
				Help: "Total provider calls by result (success/rate_limited/error)",
			}, []string{"result"}),
			outcomeCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "stormbot_generation_outcomes_total",
				Help: "Total finished generations by outcome (text/busy/failed)",
			}, []string{"kind"}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "stormbot_generation_duration_seconds",
				Help:    "Wall time of one generation including backoff waits",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			}),
		}
	})
	return generationMetricsInstance
}

// RecordAttempt implements MetricsRecorder.
func (p *PrometheusGenerationMetrics) RecordAttempt(result string) {
	p.attemptCounter.WithLabelValues(result).Inc()
}

// RecordOutcome implements MetricsRecorder.
func (p *PrometheusGenerationMetrics) RecordOutcome(kind string) {
	p.outcomeCounter.WithLabelValues(kind).Inc()
}

// RecordDuration implements MetricsRecorder.
func (p *PrometheusGenerationMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// NoOpMetrics discards all recordings.
type NoOpMetrics struct{}

// RecordAttempt implements MetricsRecorder.
func (NoOpMetrics) RecordAttempt(string) {}

// RecordOutcome implements MetricsRecorder.
func (NoOpMetrics) RecordOutcome(string) {}

// RecordDuration implements MetricsRecorder.
func (NoOpMetrics) RecordDuration(time.Duration) {}
