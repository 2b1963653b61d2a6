package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/image-crawler-service/internal/adapter/chromedp_browser"
	"github.com/user/image-crawler-service/internal/delivery/http/handler"
	"github.com/user/image-crawler-service/internal/delivery/http/router"
	"github.com/user/image-crawler-service/internal/usecase"
	"github.com/user/image-crawler-service/pkg/config"
	"github.com/user/image-crawler-service/pkg/logger"
	"github.com/user/image-crawler-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Browser ---
	browserRepo := chromedp_browser.NewChromedpBrowser(cfg.Headless)
	slog.Info("Browser allocator ready", "headless", cfg.Headless)

	// --- Use Cases ---
	imageCrawler := usecase.NewImageCrawler(browserRepo, cfg.HandlerTimeout)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(imageCrawler, cfg.ServiceName)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: httpRouter,
		// One crawl holds a request for minutes; the write timeout must
		// outlive the handler budget.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HandlerTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
