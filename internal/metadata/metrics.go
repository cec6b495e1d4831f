package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FetchDuration tracks metadata fetch latency across all modules.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsight_metadata_fetch_duration_seconds",
		Help:    "Duration of stock metadata fetches",
		Buckets: prometheus.DefBuckets,
	})

	// FetchErrorsTotal tracks module fetch failures.
	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_metadata_fetch_errors_total",
		Help: "Total number of metadata module fetch errors",
	}, []string{"module"})

	// CacheHitsTotal tracks cache hits for metadata.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_metadata_cache_hits_total",
		Help: "Total number of metadata cache hits",
	})

	// CacheMissesTotal tracks cache misses for metadata.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_metadata_cache_misses_total",
		Help: "Total number of metadata cache misses",
	})
)
