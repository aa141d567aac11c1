package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stormbot/internal/pkg/config"
)

// Run modes and statuses used as metric label values.
const (
	ModeDraft   = "draft"
	ModePublish = "publish"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RunMetrics instruments the scheduler daemon: how runs end, how long they
// take, and the health of configuration loading (embedded). Collectors
// register with the default Prometheus registry on construction, so create
// at most one per process.
type RunMetrics struct {
	*config.Metrics

	// RunsTotal counts digest runs by mode (draft, publish) and status
	// (success, failure).
	RunsTotal *prometheus.CounterVec

	// RunDurationSeconds observes the wall time of each run. Buckets stretch
	// to 30 minutes because generation backoff alone can hold a run for
	// several minutes.
	RunDurationSeconds prometheus.Histogram

	// SectionsPublishedTotal counts digest sections delivered across all
	// publish runs.
	SectionsPublishedTotal prometheus.Counter

	// LastSuccessTimestamp holds the Unix time of the last run that
	// completed without error. Alert when it goes stale past the schedule
	// interval.
	LastSuccessTimestamp prometheus.Gauge
}

// NewRunMetrics creates and registers the scheduler metrics.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		Metrics: config.NewMetrics("stormbot_worker"),

		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stormbot_worker_runs_total",
			Help: "Digest runs by mode (draft, publish) and status (success, failure)",
		}, []string{"mode", "status"}),

		RunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stormbot_worker_run_duration_seconds",
			Help:    "Duration of scheduled digest runs in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800},
		}),

		SectionsPublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stormbot_worker_sections_published_total",
			Help: "Digest sections delivered across all publish runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stormbot_worker_last_success_timestamp",
			Help: "Unix timestamp of the last fully successful run",
		}),
	}
}

// RecordRun counts one run with the given mode and status.
func (m *RunMetrics) RecordRun(mode, status string) {
	m.RunsTotal.WithLabelValues(mode, status).Inc()
}

// RecordRunDuration observes how long a run took.
func (m *RunMetrics) RecordRunDuration(d time.Duration) {
	m.RunDurationSeconds.Observe(d.Seconds())
}

// RecordSectionsPublished adds the number of sections delivered by one
// publish run.
func (m *RunMetrics) RecordSectionsPublished(count int) {
	m.SectionsPublishedTotal.Add(float64(count))
}

// RecordLastSuccess marks now as the last successful run.
func (m *RunMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
