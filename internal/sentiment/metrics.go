package sentiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ArticlesScoredTotal counts scored articles by label.
	ArticlesScoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_sentiment_articles_scored_total",
		Help: "Total number of news articles scored by sentiment label",
	}, []string{"sentiment"})
)
