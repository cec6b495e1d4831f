package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// QueryDuration tracks Postgres query latency per store operation.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finsight_storage_query_duration_seconds",
		Help:    "Duration of storage queries by operation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	// QueryErrorsTotal counts failed storage queries per operation.
	QueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_storage_query_errors_total",
		Help: "Total number of failed storage queries by operation",
	}, []string{"operation"})
)
