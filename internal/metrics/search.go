package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clausehub",
			Name:      "search_requests_total",
			Help:      "Total number of hybrid search requests",
		},
		[]string{"reranked", "status"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clausehub",
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of individual search pipeline stages",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // retrieve, fuse, rerank, summarize
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clausehub",
			Name:      "search_results_returned",
			Help:      "Number of clause hits returned per request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clausehub",
			Name:      "rerank_requests_total",
			Help:      "Total number of reranking oracle calls",
		},
		[]string{"status"},
	)

	RerankRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clausehub",
			Name:      "rerank_request_duration_seconds",
			Help:      "Reranking oracle call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	IngestClausesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clausehub",
			Name:      "ingest_clauses_total",
			Help:      "Total number of clauses ingested",
		},
		[]string{"status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(RerankRequestsTotal)
	prometheus.MustRegister(RerankRequestDuration)
	prometheus.MustRegister(IngestClausesTotal)
	searchMetricsRegistered = true
}
