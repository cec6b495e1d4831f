package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal counts successful Gemini calls.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finsight_gemini_requests_total",
		Help: "Total number of successful Gemini generate calls",
	})

	// RequestErrorsTotal counts failed Gemini calls by reason.
	RequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_gemini_request_errors_total",
		Help: "Total number of failed Gemini generate calls by reason",
	}, []string{"reason"})

	// RequestDuration tracks Gemini call latency.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsight_gemini_request_duration_seconds",
		Help:    "Duration of Gemini generate calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	})
)
