package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/image-crawler-service/internal/adapter/chromedp_browser"
	"github.com/user/image-crawler-service/internal/adapter/postgres"
	redis_adapter "github.com/user/image-crawler-service/internal/adapter/redis"
	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/internal/repository"
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

	// --- Metrics ---
	metrics.Init()

	// --- Task input ---
	task, err := loadTask(cfg.InputFile)
	if err != nil {
		slog.Error("Failed to load task input", "error", err)
		os.Exit(1)
	}
	task.ApplyDefaults()

	// Input errors are fatal before any page is created.
	if err := task.Validate(); err != nil {
		slog.Error("Invalid task input", "error", err)
		os.Exit(1)
	}

	slog.Info("Task loaded", "url", task.TargetURL, "max_images", task.MaxImages,
		"delay_min_ms", task.DelayMinMS, "delay_max_ms", task.DelayMaxMS,
		"max_requests_per_crawl", task.MaxRequestsPerCrawl)

	ctx := context.Background()

	// --- Dataset sink ---
	dataset, cleanup, err := newDataset(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize dataset sink", "backend", cfg.DatasetBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// --- Browser & use case ---
	browserRepo := chromedp_browser.NewChromedpBrowser(cfg.Headless)
	imageCrawler := usecase.NewImageCrawler(browserRepo, cfg.HandlerTimeout)

	// One URL per job and one page in flight at a time; the request cap is a
	// safety bound, not a work list.
	pageLoads := 0
	if pageLoads >= task.MaxRequestsPerCrawl {
		slog.Error("Request cap exhausted before the first page load")
		os.Exit(1)
	}
	pageLoads++

	records, err := imageCrawler.Crawl(ctx, *task)
	if err != nil {
		slog.Error("Crawl failed", "url", task.TargetURL, "error", err)
		os.Exit(1)
	}

	for _, record := range records {
		if err := dataset.Append(ctx, &record); err != nil {
			slog.Error("Failed to append record", "image_url", record.ImageURL, "error", err)
			os.Exit(1)
		}
		slog.Info("Record saved", "image_url", truncate(record.ImageURL, 100))
	}
	slog.Info("Run finished", "records", len(records), "page_loads", pageLoads)

	// Randomized inter-request delay; the only throttling this job applies.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	delay := time.Duration(rng.Intn(task.DelayMaxMS-task.DelayMinMS+1)+task.DelayMinMS) * time.Millisecond
	slog.Info("Cooling down before exit", "delay_ms", delay.Milliseconds())
	time.Sleep(delay)
}

// loadTask reads the task descriptor from the input file, falling back to
// the CRAWL_INPUT environment variable when the file is absent.
func loadTask(path string) (*entity.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		raw, ok := os.LookupEnv("CRAWL_INPUT")
		if !ok {
			return nil, fmt.Errorf("no input file at %s and CRAWL_INPUT is unset: %w", path, err)
		}
		slog.Info("Input file not found, using CRAWL_INPUT", "path", path)
		data = []byte(raw)
	}

	var task entity.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task input: %w", err)
	}
	return &task, nil
}

// newDataset builds the configured append-only record sink.
func newDataset(ctx context.Context, cfg *config.Config) (repository.DatasetRepository, func(), error) {
	switch cfg.DatasetBackend {
	case "postgres":
		connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
		dbpool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("PostgreSQL connection pool established")
		return postgres.NewImageRecordRepo(dbpool), dbpool.Close, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, nil, err
		}
		slog.Info("Redis connection established")
		return redis_adapter.NewStreamRepo(rdb), func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown dataset backend %q", cfg.DatasetBackend)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
