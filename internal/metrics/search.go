package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for SearchQueriesTotal.
const (
	OutcomeHit   = "hit"
	OutcomeZero  = "zero"
	OutcomeEmpty = "empty"
)

var (
	// SearchQueriesTotal counts search requests by outcome.
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefiks",
			Name:      "search_queries_total",
			Help:      "Total number of search queries by outcome",
		},
		[]string{"outcome"},
	)

	// VariantFailuresTotal counts query variants that failed or timed out.
	VariantFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prefiks",
			Name:      "search_variant_failures_total",
			Help:      "Total number of query variants that failed to execute",
		},
		[]string{"variant"},
	)

	// SearchDuration tracks end-to-end search latency including fan-out and merge.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prefiks",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// RegisterSearchMetrics registers search pipeline metrics with the default
// Prometheus registry. Call once at startup.
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(VariantFailuresTotal)
	prometheus.MustRegister(SearchDuration)
}
