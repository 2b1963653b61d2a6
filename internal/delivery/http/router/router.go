package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/image-crawler-service/internal/delivery/http/handler"
	"github.com/user/image-crawler-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.HandleServiceInfo)
	mux.HandleFunc("GET /health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/crawl-images", h.HandleCrawlImages)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)
	chainedHandler = middleware.CORS(chainedHandler)

	return chainedHandler
}
