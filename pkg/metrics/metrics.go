package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// To add new metrics:
// 1. Register new metrics in RegisterEngine() below.
// 2. Add appropriate metric updates where the event occurs (or in a helper
//    like RegisterProverQuery).
var (
	BifurcationCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verax_bifurcations_total",
			Help: "Number of branch points where both outcomes were feasible and explored.",
		},
	)

	proverQueryCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verax_prover_queries_total",
			Help: "Number of feasibility queries issued to the prover backend.",
		},
	)

	proverQueryTimeoutCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verax_prover_query_timeouts_total",
			Help: "Number of feasibility queries that returned no result within their budget.",
		},
	)

	proverQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verax_prover_query_duration_seconds",
			Help:    "Wall-clock time spent per feasibility query.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	heapCompressionCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verax_heap_compressions_total",
			Help: "Number of speculative heap compressions performed during retries.",
		},
	)
)

// RegisterEngine registers the verification engine's collectors with the
// default prometheus registry.
func RegisterEngine() {
	prometheus.MustRegister(BifurcationCount)
	prometheus.MustRegister(proverQueryCount)
	prometheus.MustRegister(proverQueryTimeoutCount)
	prometheus.MustRegister(proverQueryDuration)
	prometheus.MustRegister(heapCompressionCount)
}

// RegisterProverQuery records one feasibility query and its duration.
func RegisterProverQuery(duration time.Duration, timedOut bool) {
	proverQueryCount.Inc()
	proverQueryDuration.Observe(duration.Seconds())
	if timedOut {
		proverQueryTimeoutCount.Inc()
	}
}

// RegisterHeapCompression records one speculative heap compression.
func RegisterHeapCompression() {
	heapCompressionCount.Inc()
}
