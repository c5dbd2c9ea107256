package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hazard_dashboard"

// Metrics holds the Prometheus collectors for upstream calls, caching and assessments.
type Metrics struct {
	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider={openmeteo,firms,gdacs,gemini}, outcome={success,error,circuit_open}
	UpstreamDuration *prometheus.HistogramVec // labels: provider
	CacheLookups     *prometheus.CounterVec   // labels: provider, result={hit,miss}

	// Assessment metrics.
	Assessments      *prometheus.CounterVec // labels: label, severity
	BriefingFailures *prometheus.CounterVec // labels: kind={credential,api,network,unexpected}

	// Event stream metrics.
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	EventStreamEnabled prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.Assessments,
		m.BriefingFailures,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventStreamEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Provider cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Risk verdicts issued by label and severity.",
		}, []string{"label", "severity"}),
		BriefingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "briefing_failures_total",
			Help:      "Briefings that degraded to a warning message, by failure kind.",
		}, []string{"kind"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Assessment events written to Kafka.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Assessment events that failed to publish.",
		}),
		EventStreamEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_stream_enabled",
			Help:      "1 when assessment events are published to Kafka, 0 otherwise.",
		}),
	}
}
