package insights

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeFresh    = "fresh"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal counts insights requests by how they were answered.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_insights_requests_total",
		Help: "Total number of insights requests by outcome",
	}, []string{"outcome"})

	// GenerationDuration tracks AI generation latency.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsight_insights_generation_duration_seconds",
		Help:    "Duration of AI insights generation calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	})

	// GenerationErrorsTotal counts failed generations by reason.
	GenerationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_insights_generation_errors_total",
		Help: "Total number of failed insights generations by reason",
	}, []string{"reason"})

	// CacheWriteErrorsTotal counts cache writes that failed and were swallowed.
	CacheWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_insights_cache_write_errors_total",
		Help: "Total number of failed insights cache writes",
	})
)
