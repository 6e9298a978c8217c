package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for batch harvesting.
type Metrics struct {
	Registry       *prometheus.Registry
	PagesTotal     *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RecordsTotal   prometheus.Counter
	RetriesTotal   prometheus.Counter
	FallbacksTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_pages_total",
			Help: "Total pages processed, by detection outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_fetch_duration_seconds",
			Help:    "Page fetch latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_records_total",
			Help: "Total records emitted after filtering and dedupe.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_retries_total",
			Help: "Total fetch retry attempts scheduled.",
		},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_fallbacks_total",
			Help: "Total pages recovered via the fallback extractor.",
		},
	)

	registry.MustRegister(pages, fetchDuration, records, retries, fallbacks)

	return &Metrics{
		Registry:       registry,
		PagesTotal:     pages,
		FetchDuration:  fetchDuration,
		RecordsTotal:   records,
		RetriesTotal:   retries,
		FallbacksTotal: fallbacks,
	}
}

// IncPage increments the pages counter for a detection outcome label.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// AddRecords increments the emitted records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsTotal.Add(float64(n))
}

// IncRetry increments the retries counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncFallback increments the fallback recoveries counter.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.FallbacksTotal.Inc()
}
