package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the alert
// pipeline and upstream data fetches.
type Metrics struct {
	EvaluationPasses    prometheus.Counter
	EvaluationSkipped   prometheus.Counter // passes skipped by the single-flight guard
	EvaluationDuration  prometheus.Histogram
	PreferencesChecked  prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationErrors  prometheus.Counter
	UpstreamErrors      *prometheus.CounterVec // label: feed
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EvaluationPasses,
		m.EvaluationSkipped,
		m.EvaluationDuration,
		m.PreferencesChecked,
		m.NotificationsSent,
		m.NotificationErrors,
		m.UpstreamErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EvaluationPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "alert_evaluation_passes_total",
			Help:      "Total alert evaluation passes started.",
		}),
		EvaluationSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "alert_evaluation_skipped_total",
			Help:      "Passes skipped because a previous pass was still running.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lightstrail",
			Name:      "alert_evaluation_duration_seconds",
			Help:      "Duration of a complete evaluation pass.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PreferencesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "alert_preferences_checked_total",
			Help:      "Total enabled preferences evaluated.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "alert_notifications_sent_total",
			Help:      "Total alert emails delivered.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "alert_notification_errors_total",
			Help:      "Total alert email delivery failures.",
		}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightstrail",
			Name:      "upstream_fetch_errors_total",
			Help:      "Upstream data-source failures by feed.",
		}, []string{"feed"}),
	}
}
