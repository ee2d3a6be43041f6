package metrics

import "github.com/prometheus/client_golang/prometheus"

// Selection and fingerprinting Prometheus metrics.
var (
	SelectionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartsample",
			Name:      "selection_runs_total",
			Help:      "Total number of selection runs",
		},
		[]string{"strategy", "status"},
	)

	SelectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartsample",
			Name:      "selection_duration_seconds",
			Help:      "Selection engine duration in seconds, fingerprinting excluded",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"strategy"},
	)

	SelectionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smartsample",
			Name:      "selection_candidates",
			Help:      "Number of eligible candidates per selection run",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	FingerprintsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartsample",
			Name:      "fingerprints_total",
			Help:      "Total fingerprint extractions",
		},
		[]string{"status"}, // "ok" / "skipped"
	)

	FingerprintDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smartsample",
			Name:      "fingerprint_duration_seconds",
			Help:      "Fingerprint extraction duration in seconds, cache misses only",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	FingerprintCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartsample",
			Name:      "fingerprint_cache_total",
			Help:      "Fingerprint cache hits and misses",
		},
		[]string{"tier", "result"}, // tier: "memory" / "store"; result: "hit" / "miss"
	)
)

var selectionMetricsRegistered bool

// RegisterSelectionMetrics registers selection metrics. Must be called once from main.
func RegisterSelectionMetrics() {
	if selectionMetricsRegistered {
		return
	}
	prometheus.MustRegister(SelectionRunsTotal)
	prometheus.MustRegister(SelectionDuration)
	prometheus.MustRegister(SelectionCandidates)
	prometheus.MustRegister(FingerprintsTotal)
	prometheus.MustRegister(FingerprintDuration)
	prometheus.MustRegister(FingerprintCacheTotal)
	selectionMetricsRegistered = true
}
