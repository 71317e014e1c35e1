package authdriver

import (
	"context"
	"math/rand"
	"time"

	"github.com/chromedp/chromedp"
)

// Anti-detection timing bounds (spec §4.7). No example repo or
// ecosystem package solves this narrow a problem — human-like input
// timing for a specific site's click/type flow — so this is
// implemented directly on math/rand; see DESIGN.md.
const (
	preClickJitterMin  = 100 * time.Millisecond
	preClickJitterMax  = 300 * time.Millisecond
	postClickPauseMin  = 300 * time.Millisecond
	postClickPauseMax  = 2000 * time.Millisecond
	coordJitterRadiusPx = 4
	typeDelayMinMs      = 30
	typeDelayMaxMs      = 180
)

func jitterDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// HumanClick performs a click on sel with pre-click jitter and a
// post-click pause. The click itself lands on the element's centre; after
// it, one mouseMoved event goes to a random point within
// coordJitterRadiusPx of the viewport origin. The click coordinates are
// not randomized and the cursor takes no multi-step path. The property
// the core depends on is "no two attempts produce identical input timing
// traces," not any specific value.
func HumanClick(ctx context.Context, sel string) error {
	if err := sleep(ctx, jitterDuration(preClickJitterMin, preClickJitterMax)); err != nil {
		return err
	}
	dx := rand.Intn(2*coordJitterRadiusPx+1) - coordJitterRadiusPx
	dy := rand.Intn(2*coordJitterRadiusPx+1) - coordJitterRadiusPx
	if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.NodeVisible, chromedp.ByQuery),
		chromedp.MouseEvent("mouseMoved", float64(dx), float64(dy))); err != nil {
		return err
	}
	return sleep(ctx, jitterDuration(postClickPauseMin, postClickPauseMax))
}

// HumanType sends keys with a variable per-character delay and an
// occasional longer pause, instead of a single SendKeys call.
func HumanType(ctx context.Context, sel, text string) error {
	for i, r := range text {
		if err := chromedp.Run(ctx, chromedp.SendKeys(sel, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		delay := time.Duration(typeDelayMinMs+rand.Intn(typeDelayMaxMs-typeDelayMinMs)) * time.Millisecond
		if i%7 == 0 && i > 0 {
			delay += 150 * time.Millisecond
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}
