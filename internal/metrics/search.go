package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end hybrid search duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "search_type"},
	)

	SearchPathResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_path_results",
			Help:      "Hits returned by each search path before reranking",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 300},
		},
		[]string{"path"}, // "api" / "vector"
	)

	SearchPathFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_path_failures_total",
			Help:      "Search path failures substituted with an empty result",
		},
		[]string{"path", "reason"},
	)

	RerankFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_fallbacks_total",
			Help:      "Reranker fallback activations after threshold filtering removed every candidate",
		},
		[]string{"tag"},
	)

	RerankDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_dropped_total",
			Help:      "Candidates dropped below the relevance threshold",
		},
	)

	CatalogRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status"},
	)

	IngestProducts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_products_total",
			Help:      "Catalog products processed by ingestion",
		},
		[]string{"result"}, // "written" / "skipped" / "failed"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline and catalog metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchPathResults)
	prometheus.MustRegister(SearchPathFailures)
	prometheus.MustRegister(RerankFallbacks)
	prometheus.MustRegister(RerankDropped)
	prometheus.MustRegister(CatalogRequestDuration)
	prometheus.MustRegister(IngestProducts)
	searchMetricsRegistered = true
}
