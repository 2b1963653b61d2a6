package repository

import (
	"context"

	"github.com/user/image-crawler-service/internal/entity"
)

// BrowserRepository defines the contract for acquiring a controllable page
// bound to a target URL. Implementations own the browser process lifecycle.
type BrowserRepository interface {
	// NewPage opens a page, navigates it to url and waits for the initial
	// load. The returned session must be closed by the caller.
	NewPage(ctx context.Context, url string) (PageSession, error)
}

// PageSession is one live page. All operations suspend the caller until the
// browser responds; no two operations on the same session run concurrently.
type PageSession interface {
	// ApplyFingerprint overrides the page's user agent, viewport, language
	// and extra HTTP headers for all subsequent traffic.
	ApplyFingerprint(ctx context.Context, fp entity.Fingerprint) error
	// ChallengePresent reports whether a CAPTCHA or robot-check marker is
	// visible in the DOM.
	ChallengePresent(ctx context.Context) (bool, error)
	// MoveMouse moves the simulated pointer to viewport coordinates.
	MoveMouse(ctx context.Context, x, y float64) error
	// ScrollBy scrolls the page down by px pixels with smooth semantics.
	ScrollBy(ctx context.Context, px int) error
	// ScrollToBottom scrolls to the end of the document.
	ScrollToBottom(ctx context.Context) error
	// CandidateCount counts currently matching candidate image elements.
	CandidateCount(ctx context.Context) (int, error)
	// HoverCandidate moves the pointer to the center of the index-th
	// candidate image, if it exists and has a layout box.
	HoverCandidate(ctx context.Context, index int) error
	// ContainerCount counts candidate image containers.
	ContainerCount(ctx context.Context) (int, error)
	// ClickContainer clicks the index-th candidate image container.
	ClickContainer(ctx context.Context, index int) error
	// Snapshot annotates element geometry and captures the settled DOM.
	Snapshot(ctx context.Context) (*entity.PageSnapshot, error)
	// Close releases the page and its browser context.
	Close()
}
