package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CrawlsTotal         *prometheus.CounterVec
	CrawlDuration       *prometheus.HistogramVec
	ImagesExtracted     prometheus.Counter
	ChallengesDetected  prometheus.Counter
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	CrawlsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawls_total",
			Help: "Total number of crawl attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	CrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_duration_seconds",
			Help:    "Duration of crawl operations, interaction sequence included.",
			Buckets: []float64{5, 15, 30, 60, 90, 120, 180},
		},
		[]string{"domain"},
	)

	ImagesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "images_extracted_total",
			Help: "Total number of image records produced.",
		},
	)

	ChallengesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenges_detected_total",
			Help: "Total number of page loads aborted on a bot challenge.",
		},
	)
}
