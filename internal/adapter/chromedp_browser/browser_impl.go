// Package chromedp_browser implements the controllable-browser port on top
// of chromedp/CDP. One exec allocator is pooled per process; every page gets
// its own browser context so concurrent requests never share state.
package chromedp_browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/internal/extract"
	"github.com/user/image-crawler-service/internal/repository"
)

// Live-page selectors. The extraction selectors live in internal/extract;
// these drive the in-flight interaction steps.
const (
	challengeSelector = `iframe[src*="recaptcha"], .g-recaptcha, #captcha, [data-captcha]`
	candidateSelector = `img[src*="encrypted-tbn"], img[src*="googleusercontent"], img[src*="gstatic"]`
	containerSelector = `.rg_l, .islrc, [data-ved]`
)

type ChromedpBrowser struct {
	allocatorPool *sync.Pool
}

// NewChromedpBrowser creates a new browser repository backed by chromedp.
// The launch flags mirror a regular desktop Chrome as closely as headless
// automation allows.
func NewChromedpBrowser(headless bool) repository.BrowserRepository {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", headless),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.Flag("disable-blink-features", "AutomationControlled"),
				chromedp.Flag("disable-features", "VizDisplayCompositor"),
				chromedp.Flag("disable-web-security", true),
				chromedp.Flag("disable-default-apps", true),
				chromedp.Flag("disable-extensions", true),
				chromedp.Flag("no-first-run", true),
				chromedp.Flag("no-default-browser-check", true),
				chromedp.Flag("hide-scrollbars", true),
				chromedp.Flag("mute-audio", true),
				chromedp.Flag("password-store", "basic"),
				chromedp.Flag("use-mock-keychain", true),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	// Pre-warm so the first request does not pay the allocator cost.
	allocCtx := pool.Get().(context.Context)
	pool.Put(allocCtx)

	return &ChromedpBrowser{allocatorPool: pool}
}

// NewPage opens a fresh browser context, navigates it to url and waits for
// the body to be ready.
func (b *ChromedpBrowser) NewPage(ctx context.Context, url string) (repository.PageSession, error) {
	allocCtx := b.allocatorPool.Get().(context.Context)

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	session := &pageSession{
		browser:  b,
		allocCtx: allocCtx,
		taskCtx:  taskCtx,
		cancel:   cancel,
	}

	// Tie the browser context to the caller's deadline.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-taskCtx.Done():
		}
	}()

	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	return session, nil
}

type pageSession struct {
	browser   *ChromedpBrowser
	allocCtx  context.Context
	taskCtx   context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *pageSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.taskCtx, actions...)
}

// ApplyFingerprint overrides the page identity for all subsequent traffic.
// The initial navigation already happened under the default identity.
func (s *pageSession) ApplyFingerprint(ctx context.Context, fp entity.Fingerprint) error {
	headers := make(network.Headers, len(fp.ExtraHeaders)+1)
	for k, v := range fp.ExtraHeaders {
		headers[k] = v
	}
	headers["Accept-Language"] = fp.AcceptLanguage

	return s.run(ctx,
		network.Enable(),
		emulation.SetUserAgentOverride(fp.UserAgent).WithAcceptLanguage(fp.AcceptLanguage),
		chromedp.EmulateViewport(int64(fp.ViewportWidth), int64(fp.ViewportHeight)),
		network.SetExtraHTTPHeaders(headers),
	)
}

func (s *pageSession) ChallengePresent(ctx context.Context) (bool, error) {
	var found bool
	js := fmt.Sprintf(`document.querySelector('%s') !== null`, challengeSelector)
	if err := s.run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (s *pageSession) MoveMouse(ctx context.Context, x, y float64) error {
	return s.run(ctx, input.DispatchMouseEvent(input.MouseMoved, x, y))
}

func (s *pageSession) ScrollBy(ctx context.Context, px int) error {
	js := fmt.Sprintf(`window.scrollBy({top: %d, behavior: 'smooth'})`, px)
	return s.run(ctx, chromedp.Evaluate(js, nil))
}

func (s *pageSession) ScrollToBottom(ctx context.Context) error {
	const js = `window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`
	return s.run(ctx, chromedp.Evaluate(js, nil))
}

func (s *pageSession) CandidateCount(ctx context.Context) (int, error) {
	var count int
	js := fmt.Sprintf(`document.querySelectorAll('%s').length`, candidateSelector)
	if err := s.run(ctx, chromedp.Evaluate(js, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

// HoverCandidate moves the pointer to the center of the index-th candidate
// image, if it exists and has a layout box.
func (s *pageSession) HoverCandidate(ctx context.Context, index int) error {
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll('%s');
		if (%d >= els.length) return [];
		const r = els[%d].getBoundingClientRect();
		if (r.width === 0 && r.height === 0) return [];
		return [r.left + r.width / 2, r.top + r.height / 2];
	})()`, candidateSelector, index, index)

	var center []float64
	if err := s.run(ctx, chromedp.Evaluate(js, &center)); err != nil {
		return err
	}
	if len(center) != 2 {
		return nil
	}
	return s.MoveMouse(ctx, center[0], center[1])
}

func (s *pageSession) ContainerCount(ctx context.Context) (int, error) {
	var count int
	js := fmt.Sprintf(`document.querySelectorAll('%s').length`, containerSelector)
	if err := s.run(ctx, chromedp.Evaluate(js, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *pageSession) ClickContainer(ctx context.Context, index int) error {
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll('%s');
		if (%d < els.length) els[%d].click();
	})()`, containerSelector, index, index)
	return s.run(ctx, chromedp.Evaluate(js, nil))
}

// Snapshot stamps every image and link with its on-screen position, then
// captures the document and its final address for offline extraction.
func (s *pageSession) Snapshot(ctx context.Context) (*entity.PageSnapshot, error) {
	annotate := fmt.Sprintf(`document.querySelectorAll('img, a[href]').forEach((el) => {
		const r = el.getBoundingClientRect();
		el.setAttribute('%s', Math.round(r.left) + ',' + Math.round(r.top));
	})`, extract.BoxAttr)

	var html, location string
	err := s.run(ctx,
		chromedp.Evaluate(annotate, nil),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, err
	}
	return &entity.PageSnapshot{HTML: html, URL: location}, nil
}

func (s *pageSession) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.browser.allocatorPool.Put(s.allocCtx)
	})
}
