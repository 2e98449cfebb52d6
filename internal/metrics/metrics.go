package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector jobscout exports. It satisfies
// aggregate.Observer and enrich.Observer.
type Metrics struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	fetchedPostings *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	enrichments     *prometheus.CounterVec
	enrichDuration  prometheus.Histogram
}

// New creates a Metrics backed by its own registry, with the Go runtime and
// process collectors included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "source_fetches_total",
			Help:      "Adapter fetches by source and result.",
		}, []string{"source", "result"}),
		fetchedPostings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "source_postings_total",
			Help:      "Postings returned by each source before dedup.",
		}, []string{"source"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobscout",
			Name:      "source_fetch_duration_seconds",
			Help:      "Adapter fetch latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "enrichments_total",
			Help:      "Processed pending postings by outcome.",
		}, []string{"outcome"}),
		enrichDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jobscout",
			Name:      "enrichment_duration_seconds",
			Help:      "Time to extract and link one summary.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		}),
	}

	m.registry.MustRegister(
		m.fetches,
		m.fetchedPostings,
		m.fetchDuration,
		m.enrichments,
		m.enrichDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveFetch(source string, postings int, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(source, result).Inc()
	m.fetchedPostings.WithLabelValues(source).Add(float64(postings))
	m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveEnrichment(outcome string, elapsed time.Duration) {
	m.enrichments.WithLabelValues(outcome).Inc()
	m.enrichDuration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
