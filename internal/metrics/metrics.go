// Package metrics bundles Prometheus collectors for the scraping pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry       *prometheus.Registry
	ScrapesTotal   *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	FetchRetries   prometheus.Counter
	BatchItems     *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_scrapes_total",
			Help: "Total single-item scrapes by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_scrape_duration_seconds",
			Help:    "End-to-end latency of single-item scrapes.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_fetch_retries_total",
			Help: "Total fetch retry attempts.",
		},
	)
	batchItems := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_batch_items_total",
			Help: "Total batch items by result.",
		},
		[]string{"result"},
	)

	registry.MustRegister(scrapes, duration, retries, batchItems)

	return &Metrics{
		Registry:       registry,
		ScrapesTotal:   scrapes,
		ScrapeDuration: duration,
		FetchRetries:   retries,
		BatchItems:     batchItems,
	}
}

// IncScrape records one finished scrape for a source with an outcome label.
func (m *Metrics) IncScrape(source, outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveDuration records the wall time of one scrape.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

// IncRetry increments the fetch retry counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.FetchRetries.Inc()
}

// IncBatchItem records one terminal batch item result.
func (m *Metrics) IncBatchItem(result string) {
	if m == nil {
		return
	}
	m.BatchItems.WithLabelValues(result).Inc()
}
