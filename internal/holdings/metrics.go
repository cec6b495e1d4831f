package holdings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	HoldingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_holdings_created_total",
		Help: "Total number of holdings created",
	})

	MetadataEnrichFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_holdings_metadata_enrich_failures_total",
		Help: "Total number of holdings stored without metadata because the lookup failed",
	})

	SummaryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsight_holdings_summary_duration_seconds",
		Help:    "Duration of portfolio summary computation",
		Buckets: prometheus.DefBuckets,
	})
)
