package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestDuration tracks API latency by route pattern and status code.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finsight_http_request_duration_seconds",
		Help:    "Duration of HTTP API requests",
		Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60, 90},
	}, []string{"route", "status"})

	// AuthFailuresTotal counts rejected bearer tokens.
	AuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_http_auth_failures_total",
		Help: "Total number of requests rejected by authentication",
	})
)
