package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cyberpulse_feed_duration_seconds",
			Help:    "Feed pipeline duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	FeedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberpulse_feed_total",
			Help: "Total feed queries processed",
		},
		[]string{"status"},
	)

	TopicsExtracted = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyberpulse_topics_extracted",
			Help:    "Topics extracted per query",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyberpulse_provider_fetch_duration_seconds",
			Help:    "Search provider fetch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberpulse_provider_fetch_failures_total",
			Help: "Total failed search provider fetches",
		},
	)

	ArticlesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberpulse_articles_scored_total",
			Help: "Total articles scored",
		},
	)

	ArticlesFiltered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberpulse_articles_filtered_total",
			Help: "Total articles dropped below the severity filter",
		},
	)

	ThreatScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyberpulse_threat_score",
			Help:    "Distribution of computed threat scores",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberpulse_cache_hits_total",
			Help: "Total feed cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberpulse_cache_misses_total",
			Help: "Total feed cache misses",
		},
	)
)

func Init() {
	prometheus.MustRegister(FeedDuration)
	prometheus.MustRegister(FeedTotal)
	prometheus.MustRegister(TopicsExtracted)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(FetchFailures)
	prometheus.MustRegister(ArticlesScored)
	prometheus.MustRegister(ArticlesFiltered)
	prometheus.MustRegister(ThreatScores)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
