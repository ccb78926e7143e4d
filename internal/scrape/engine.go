package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"pricescout/internal/domain"
)

// runSite drives one store's scraping run against a live session: pace,
// harden, navigate, wait for a results marker, scroll for lazy content,
// snapshot the rendered page and parse it. Only navigation and snapshot
// failures are errors; a page that never shows results yields nil results.
func runSite(ctx context.Context, sess Session, site *Site, query string, logger *zap.Logger) ([]domain.ProductResult, error) {
	searchURL := site.SearchURL(query)
	logger.Info("scraping site",
		zap.String("source", string(site.Source)),
		zap.String("url", searchURL))

	// Randomized pre-request delay to avoid a machine-regular request pattern.
	sleepBetween(ctx, site.PreDelayMin, site.PreDelayMax)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx := sess.Context()

	if site.Hardened {
		if err := hardenSession(bctx, sess.UserAgent()); err != nil {
			// Best effort; the run can still succeed without it.
			logger.Warn("failed to harden session",
				zap.String("source", string(site.Source)), zap.Error(err))
		}
	}

	if err := chromedp.Run(bctx, chromedp.Navigate(searchURL)); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", site.Source, err)
	}

	ready, err := waitForAny(bctx, site.ReadyMarkers, site.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for %s results: %w", site.Source, err)
	}
	if !ready {
		logger.Warn("results container not found",
			zap.String("source", string(site.Source)))
		return nil, nil
	}

	scrollPage(bctx, site.ScrollSteps, site.ScrollBy)

	var html string
	if err := chromedp.Run(bctx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("snapshot %s page: %w", site.Source, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", site.Source, err)
	}

	results := site.Parse(doc)
	logger.Info("scraped site",
		zap.String("source", string(site.Source)),
		zap.Int("products", len(results)))
	return results, nil
}

// hardenSession resets client-side state and overrides outgoing headers at
// the network layer, for stores that fingerprint repeat visitors.
func hardenSession(bctx context.Context, userAgent string) error {
	headers := network.Headers{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "max-age=0",
	}
	return chromedp.Run(bctx,
		network.Enable(),
		network.ClearBrowserCookies(),
		chromedp.Evaluate(`try { window.localStorage.clear(); window.sessionStorage.clear(); } catch (e) {}`, nil),
		network.SetExtraHTTPHeaders(headers),
	)
}

// waitForAny polls until any one of the ordered markers is present in the
// document or the timeout elapses. A timeout is reported as (false, nil) so
// callers can degrade to an empty result; a driver or context failure is an
// error, the page state being unknowable at that point.
func waitForAny(bctx context.Context, markers []string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, marker := range markers {
			var present bool
			expr := fmt.Sprintf("document.querySelector(%q) !== null", marker)
			if err := chromedp.Run(bctx, chromedp.Evaluate(expr, &present)); err != nil {
				return false, fmt.Errorf("poll for results marker: %w", err)
			}
			if present {
				return true, nil
			}
		}
		select {
		case <-bctx.Done():
			return false, bctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return false, nil
}

// scrollPage scrolls the viewport incrementally, pausing between steps so
// lazy-loaded product cards have time to render.
func scrollPage(bctx context.Context, steps, pixels int) {
	for i := 0; i < steps; i++ {
		expr := fmt.Sprintf("window.scrollBy(0, %d)", pixels)
		if err := chromedp.Run(bctx, chromedp.Evaluate(expr, nil)); err != nil {
			return
		}
		select {
		case <-bctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// sleepBetween sleeps for a random duration in [min, max], or until the
// context is cancelled.
func sleepBetween(ctx context.Context, min, max time.Duration) {
	if min <= 0 && max <= 0 {
		return
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
