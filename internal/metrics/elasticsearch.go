package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Elasticsearch metrics for monitoring search performance and health
var (
	ElasticsearchQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "elasticsearch_query_duration_seconds",
			Help:    "Duration of Elasticsearch requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"engine", "index", "operation", "status"},
	)

	ElasticsearchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elasticsearch_errors_total",
			Help: "Total number of Elasticsearch errors",
		},
		[]string{"engine", "index", "operation", "error_type"},
	)

	ElasticsearchDocumentCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "elasticsearch_document_count",
			Help: "Number of documents in each index after the last reindex",
		},
		[]string{"index"},
	)

	// Reindex metrics
	ReindexRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reindex_runs_total",
			Help: "Total number of reindex runs by outcome",
		},
		[]string{"index", "engine", "outcome"},
	)

	ReindexDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reindex_duration_seconds",
			Help:    "Duration of reindex runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"index", "engine"},
	)

	ReindexItemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reindex_item_errors_total",
			Help: "Total number of bulk items that failed during reindex",
		},
		[]string{"index"},
	)

	ReconciliationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_runs_total",
			Help: "Total number of reconciliation checks by result",
		},
		[]string{"index", "result"},
	)
)

// ObserveElasticsearch records one Elasticsearch request
func ObserveElasticsearch(engine, index, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ElasticsearchQueryDuration.WithLabelValues(engine, index, operation, status).Observe(time.Since(start).Seconds())
}

// RecordElasticsearchError counts an Elasticsearch failure by type
func RecordElasticsearchError(engine, index, operation, errorType string) {
	ElasticsearchErrorsTotal.WithLabelValues(engine, index, operation, errorType).Inc()
}
