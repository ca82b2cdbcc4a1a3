package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexer Prometheus metrics.
var (
	IndexerDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_documents_total",
			Help:      "Documents processed by the bulk indexer",
		},
		[]string{"status"}, // "ok" / "error"
	)

	IndexerBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_batches_total",
			Help:      "Batches processed by the bulk indexer",
		},
		[]string{"status"}, // "ok" / "partial" / "failed"
	)

	IndexerBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indexer_batch_duration_seconds",
			Help:      "Time to embed and write one batch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var indexerMetricsRegistered bool

// RegisterIndexerMetrics registers Prometheus indexer metrics. Must be called once from main.
func RegisterIndexerMetrics() {
	if indexerMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexerDocumentsTotal)
	prometheus.MustRegister(IndexerBatchesTotal)
	prometheus.MustRegister(IndexerBatchDuration)
	indexerMetricsRegistered = true
}
