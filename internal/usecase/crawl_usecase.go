package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/internal/extract"
	"github.com/user/image-crawler-service/internal/repository"
	"github.com/user/image-crawler-service/internal/stealth"
	"github.com/user/image-crawler-service/pkg/metrics"
)

// ImageCrawler defines the interface for one full extraction run: acquire a
// page, drive the interaction sequence, mine the settled DOM.
type ImageCrawler interface {
	Crawl(ctx context.Context, task entity.Task) ([]entity.ImageRecord, error)
}

type imageCrawlerUseCase struct {
	browser   repository.BrowserRepository
	extractor *extract.Extractor
	timeout   time.Duration

	// newRand builds the per-run randomness source. One source per run keeps
	// concurrent requests independent and lets tests pin a seed.
	newRand func() *rand.Rand

	// runSequence drives the interaction sequence; replaced in tests to
	// avoid wall-clock waits.
	runSequence func(ctx context.Context, page stealth.Page, fp entity.Fingerprint, maxImages int, rng *rand.Rand) error
}

// NewImageCrawler creates the crawl use case. timeout bounds the whole
// per-page interaction+extraction sequence.
func NewImageCrawler(browser repository.BrowserRepository, timeout time.Duration) ImageCrawler {
	return &imageCrawlerUseCase{
		browser:   browser,
		extractor: extract.NewExtractor(),
		timeout:   timeout,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		runSequence: func(ctx context.Context, page stealth.Page, fp entity.Fingerprint, maxImages int, rng *rand.Rand) error {
			return stealth.NewSequencer(rng).Run(ctx, page, fp, maxImages)
		},
	}
}

// Crawl validates the task, then runs the pipeline against a single page.
// Challenge detection and timeouts are fatal for the page load; interaction
// step failures were already swallowed further down.
func (uc *imageCrawlerUseCase) Crawl(ctx context.Context, task entity.Task) ([]entity.ImageRecord, error) {
	if err := task.Validate(); err != nil {
		metrics.CrawlsTotal.WithLabelValues("failure", "input").Inc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	startTime := time.Now()
	domain := "unknown"
	if parsedURL, err := url.Parse(task.TargetURL); err == nil && parsedURL.Hostname() != "" {
		domain = parsedURL.Hostname()
	}

	records, err := uc.crawlPage(ctx, task)

	metrics.CrawlDuration.WithLabelValues(domain).Observe(time.Since(startTime).Seconds())

	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	metrics.CrawlsTotal.WithLabelValues("success", "").Inc()
	metrics.ImagesExtracted.Add(float64(len(records)))
	slog.Info("Crawl complete", "url", task.TargetURL, "records", len(records),
		"duration_ms", time.Since(startTime).Milliseconds())
	return records, nil
}

func (uc *imageCrawlerUseCase) crawlPage(ctx context.Context, task entity.Task) ([]entity.ImageRecord, error) {
	page, err := uc.browser.NewPage(ctx, task.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}
	defer page.Close()

	rng := uc.newRand()
	fp := stealth.NewFingerprint(rng)
	slog.Info("Applying fingerprint", "user_agent", fp.UserAgent,
		"viewport_width", fp.ViewportWidth, "viewport_height", fp.ViewportHeight)

	if err := uc.runSequence(ctx, page, fp, task.MaxImages, rng); err != nil {
		return nil, err
	}

	snap, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page snapshot: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}

	return uc.extractor.Extract(doc, snap.URL, task.MaxImages), nil
}

func (uc *imageCrawlerUseCase) recordFailure(err error) {
	errorType := "unknown"
	switch {
	case errors.Is(err, stealth.ErrChallengeDetected):
		errorType = "challenge"
		metrics.ChallengesDetected.Inc()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, repository.ErrCrawlTimeout):
		errorType = "timeout"
	case errors.Is(err, repository.ErrNavigationFailed):
		errorType = "navigation"
	}
	metrics.CrawlsTotal.WithLabelValues("failure", errorType).Inc()
}

// FilterComplete drops records missing alt, sourceUrl or nearbyText. The
// API response applies this; the batch flow persists everything.
func FilterComplete(records []entity.ImageRecord) []entity.ImageRecord {
	filtered := make([]entity.ImageRecord, 0, len(records))
	for _, r := range records {
		if r.Complete() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
