package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for ingestion and escalation.
type Metrics struct {
	Submissions        *prometheus.CounterVec // labels: integrity={valid,invalid}
	SubmissionErrors   *prometheus.CounterVec // labels: reason={validation,storage}
	RecordsListed      prometheus.Counter
	Escalations        *prometheus.CounterVec // labels: status
	EscalationDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trapwatch",
			Name:      "submissions_total",
			Help:      "Accepted trap submissions by integrity result.",
		}, []string{"integrity"}),
		SubmissionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trapwatch",
			Name:      "submission_errors_total",
			Help:      "Rejected or failed submissions by reason.",
		}, []string{"reason"}),
		RecordsListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trapwatch",
			Name:      "records_listed_total",
			Help:      "Total records returned by recent-record queries.",
		}),
		Escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trapwatch",
			Name:      "escalations_total",
			Help:      "Escalation runs by terminal status.",
		}, []string{"status"}),
		EscalationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trapwatch",
			Name:      "escalation_duration_seconds",
			Help:      "Duration of an escalation run including notifier dispatch.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Submissions,
		m.SubmissionErrors,
		m.RecordsListed,
		m.Escalations,
		m.EscalationDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
