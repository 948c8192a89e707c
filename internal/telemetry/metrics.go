package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LookupsTotal counts lookup requests by terminal status.
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnscope",
			Name:      "lookups_total",
			Help:      "Total number of CVE lookup requests",
		},
		[]string{"status"},
	)

	// LookupDuration observes end-to-end lookup latency.
	LookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vulnscope",
			Name:      "lookup_duration_seconds",
			Help:      "End-to-end duration of CVE lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// EnrichmentFailures counts absent enrichment results by provider
	EnrichmentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnscope",
			Name:      "enrichment_failures_total",
			Help:      "Enrichment provider calls that degraded to absence",
		},
		[]string{"provider"},
	)

	// EnrichmentDuration observes per-provider call latency.
	EnrichmentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vulnscope",
			Name:      "enrichment_duration_seconds",
			Help:      "Duration of enrichment provider calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// HistoryWrites counts search history upserts by outcome.
	HistoryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vulnscope",
			Name:      "history_writes_total",
			Help:      "Search history upserts",
		},
		[]string{"outcome"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(LookupsTotal)
		prometheus.DefaultRegisterer.Register(LookupDuration)
		prometheus.DefaultRegisterer.Register(EnrichmentFailures)
		prometheus.DefaultRegisterer.Register(EnrichmentDuration)
		prometheus.DefaultRegisterer.Register(HistoryWrites)
	})
}
