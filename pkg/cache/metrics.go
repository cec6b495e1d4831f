package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	HitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_cache_hits_total",
		Help: "Total number of in-process cache hits",
	}, []string{"cache"})

	MissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_cache_misses_total",
		Help: "Total number of in-process cache misses",
	}, []string{"cache"})

	SetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_cache_sets_total",
		Help: "Total number of admitted cache writes",
	}, []string{"cache"})

	DeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_cache_deletes_total",
		Help: "Total number of cache deletes",
	}, []string{"cache"})

	HitRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "finsight_cache_hit_ratio",
		Help: "Ratio of hits to lookups as tracked by the cache",
	}, []string{"cache"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finsight_cache_operation_duration_seconds",
		Help:    "Duration of cache operations",
		Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
	}, []string{"cache", "operation"})
)
