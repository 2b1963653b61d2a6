package stealth

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/user/image-crawler-service/internal/entity"
)

// ErrChallengeDetected is returned when a CAPTCHA or robot-check marker is
// found in the DOM. It is fatal for the current page load and is never
// retried automatically.
var ErrChallengeDetected = errors.New("challenge detected: manual intervention or identity rotation required")

// Page is the controllable-page capability the sequencer drives. It is a
// subset of repository.PageSession; anything satisfying that interface
// satisfies this one.
type Page interface {
	ApplyFingerprint(ctx context.Context, fp entity.Fingerprint) error
	ChallengePresent(ctx context.Context) (bool, error)
	MoveMouse(ctx context.Context, x, y float64) error
	ScrollBy(ctx context.Context, px int) error
	ScrollToBottom(ctx context.Context) error
	CandidateCount(ctx context.Context) (int, error)
	HoverCandidate(ctx context.Context, index int) error
	ContainerCount(ctx context.Context) (int, error)
	ClickContainer(ctx context.Context, index int) error
}

// Sequencer walks a freshly navigated page through a randomized, human-like
// interaction trace. Every random choice is drawn from the injected RNG so a
// full sequence is replayable under a fixed seed. Challenge detection is the
// only fatal condition; hover and click failures are swallowed and the
// sequence continues.
type Sequencer struct {
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSequencer creates a sequencer drawing randomness from rng. A nil rng
// falls back to a time-seeded source.
func NewSequencer(rng *rand.Rand) *Sequencer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sequencer{rng: rng, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pause suspends for a random duration in [minMS, minMS+spanMS) milliseconds.
func (s *Sequencer) pause(ctx context.Context, minMS, spanMS int) error {
	d := time.Duration(s.rng.Intn(spanMS)+minMS) * time.Millisecond
	return s.sleep(ctx, d)
}

// Run executes the full interaction sequence against page. maxImages is the
// loading-sufficiency threshold taken from the task; the scroll loop stops
// early once 80% of it is visible.
func (s *Sequencer) Run(ctx context.Context, page Page, fp entity.Fingerprint, maxImages int) error {
	// The fingerprint lands after the initial navigation, so the first
	// document request went out under the browser's default identity.
	if err := page.ApplyFingerprint(ctx, fp); err != nil {
		return err
	}

	found, err := page.ChallengePresent(ctx)
	if err != nil {
		return err
	}
	if found {
		return ErrChallengeDetected
	}

	// Page-load dwell time.
	if err := s.pause(ctx, 2000, 3000); err != nil {
		return err
	}

	x := float64(s.rng.Intn(800) + 100)
	y := float64(s.rng.Intn(600) + 100)
	if err := page.MoveMouse(ctx, x, y); err != nil {
		slog.Debug("Pointer move failed", "error", err)
	}
	if err := s.pause(ctx, 500, 1000); err != nil {
		return err
	}

	if err := s.scrollLoop(ctx, page, maxImages); err != nil {
		return err
	}

	if err := s.exploratoryClicks(ctx, page); err != nil {
		return err
	}

	if err := page.ScrollToBottom(ctx); err != nil {
		slog.Debug("Final scroll failed", "error", err)
	}
	// Let trailing lazy-loaded images resolve.
	return s.pause(ctx, 3000, 3000)
}

// scrollLoop performs 5-12 uneven scroll steps with occasional reading
// pauses and image hovers, stopping early once enough candidates are loaded.
func (s *Sequencer) scrollLoop(ctx context.Context, page Page, maxImages int) error {
	maxScrolls := s.rng.Intn(8) + 5

	for i := 0; i < maxScrolls; i++ {
		distance := s.rng.Intn(400) + 200
		if err := page.ScrollBy(ctx, distance); err != nil {
			slog.Debug("Scroll step failed", "error", err)
		}
		if err := s.pause(ctx, 1000, 2000); err != nil {
			return err
		}

		if s.rng.Float64() < 0.3 {
			// Stop to "read" the results.
			if err := s.pause(ctx, 2000, 3000); err != nil {
				return err
			}
		}

		if s.rng.Float64() < 0.4 {
			if err := s.hoverRandomCandidate(ctx, page); err != nil {
				return err
			}
		}

		count, err := page.CandidateCount(ctx)
		if err != nil {
			slog.Debug("Candidate count failed", "error", err)
			continue
		}
		slog.Info("Scroll step complete", "step", i+1, "images_visible", count)

		if float64(count) >= 0.8*float64(maxImages) {
			break
		}
	}
	return nil
}

// hoverRandomCandidate moves the pointer to one of the first 5 visible
// candidate images. Hover failures never abort the sequence.
func (s *Sequencer) hoverRandomCandidate(ctx context.Context, page Page) error {
	count, err := page.CandidateCount(ctx)
	if err != nil || count == 0 {
		return nil
	}
	if count > 5 {
		count = 5
	}
	if err := page.HoverCandidate(ctx, s.rng.Intn(count)); err != nil {
		slog.Debug("Hover failed", "error", err)
		return nil
	}
	return s.pause(ctx, 500, 1500)
}

// exploratoryClicks clicks 1-2 image containers. The index is re-rolled
// independently for each click, so the same container may be clicked twice.
func (s *Sequencer) exploratoryClicks(ctx context.Context, page Page) error {
	containers, err := page.ContainerCount(ctx)
	if err != nil {
		slog.Debug("Container count failed", "error", err)
		return nil
	}
	if containers == 0 {
		return nil
	}

	clicks := s.rng.Intn(2) + 1
	if clicks > containers {
		clicks = containers
	}
	slog.Info("Clicking image containers", "count", clicks)

	for i := 0; i < clicks; i++ {
		if err := page.ClickContainer(ctx, s.rng.Intn(containers)); err != nil {
			slog.Debug("Container click failed", "error", err)
		}
		if err := s.pause(ctx, 1000, 2000); err != nil {
			return err
		}
	}
	return nil
}
