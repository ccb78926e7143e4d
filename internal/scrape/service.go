package scrape

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/browser"
	"pricescout/internal/domain"
	"pricescout/internal/monitoring"
)

// Session is the narrow view of a live browser session the engine needs.
type Session interface {
	Context() context.Context
	UserAgent() string
}

// Sessions acquires and releases browser sessions. Release must be safe to
// call on every exit path of a run.
type Sessions interface {
	Acquire(ctx context.Context) (Session, error)
	Release(Session)
}

// ChromeSessions adapts the chromedp session manager to the Sessions
// interface.
type ChromeSessions struct {
	mgr *browser.Manager
}

func NewChromeSessions(mgr *browser.Manager) *ChromeSessions {
	return &ChromeSessions{mgr: mgr}
}

func (c *ChromeSessions) Acquire(ctx context.Context) (Session, error) {
	sess, err := c.mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (c *ChromeSessions) Release(s Session) {
	if sess, ok := s.(*browser.Session); ok {
		c.mgr.Release(sess)
	}
}

// Runner is one store's scraping strategy bound to an executable form.
type Runner interface {
	Source() domain.Source
	Run(ctx context.Context, sess Session, query string) ([]domain.ProductResult, error)
}

// SiteRunner executes a Site descriptor through the chromedp engine.
type SiteRunner struct {
	site   *Site
	logger *zap.Logger
}

func NewSiteRunner(site *Site, logger *zap.Logger) *SiteRunner {
	return &SiteRunner{site: site, logger: logger}
}

func (r *SiteRunner) Source() domain.Source {
	return r.site.Source
}

func (r *SiteRunner) Run(ctx context.Context, sess Session, query string) ([]domain.ProductResult, error) {
	return runSite(ctx, sess, r.site, query, r.logger)
}

// Cache is an optional short-lived store for whole search results.
type Cache interface {
	Get(ctx context.Context, query string) ([]domain.ProductResult, bool)
	Set(ctx context.Context, query string, results []domain.ProductResult)
}

// Searcher runs every store adapter sequentially against one session and
// merges the results sorted by price. Partial results are a valid outcome;
// a store that fails or comes back empty degrades the run, never aborts it.
type Searcher struct {
	sessions Sessions
	runners  []Runner
	cache    Cache
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	// Randomized pause between store runs, part of the request pacing.
	delayMin time.Duration
	delayMax time.Duration
}

func NewSearcher(sessions Sessions, runners []Runner, cache Cache, metrics *monitoring.Metrics, logger *zap.Logger) *Searcher {
	return &Searcher{
		sessions: sessions,
		runners:  runners,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		delayMin: 2 * time.Second,
		delayMax: 3 * time.Second,
	}
}

// Search scrapes every store for the query and returns the merged results in
// ascending price order. The session is released on every exit path.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.ProductResult, error) {
	if s.cache != nil {
		if results, ok := s.cache.Get(ctx, query); ok {
			s.logger.Debug("search cache hit", zap.String("query", query))
			return results, nil
		}
	}

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire browser session: %w", err)
	}
	defer s.sessions.Release(sess)

	var all []domain.ProductResult
	var degraded []string
	for i, runner := range s.runners {
		if i > 0 {
			sleepBetween(ctx, s.delayMin, s.delayMax)
		}
		source := string(runner.Source())
		start := time.Now()
		results, err := runner.Run(ctx, sess, query)
		switch {
		case err != nil:
			s.metrics.ObserveScrape(source, "error", time.Since(start))
			s.logger.Warn("site scrape failed",
				zap.String("source", source), zap.Error(err))
			degraded = append(degraded, source)
		case len(results) == 0:
			s.metrics.ObserveScrape(source, "empty", time.Since(start))
		default:
			s.metrics.ObserveScrape(source, "ok", time.Since(start))
			s.metrics.AddProducts(source, len(results))
			all = append(all, results...)
		}
	}

	if len(degraded) > 0 {
		s.logger.Warn("search completed with degraded sources",
			zap.String("query", query), zap.Strings("sources", degraded))
	}

	// Stable: equal prices keep source order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Price < all[j].Price })

	if s.cache != nil && len(all) > 0 {
		s.cache.Set(ctx, query, all)
	}
	return all, nil
}

// CheckSource scrapes a single store, used by alert rechecks. It acquires
// its own session so concurrent alert jobs never share a browser.
func (s *Searcher) CheckSource(ctx context.Context, source domain.Source, query string) ([]domain.ProductResult, error) {
	var runner Runner
	for _, r := range s.runners {
		if r.Source() == source {
			runner = r
			break
		}
	}
	if runner == nil {
		return nil, fmt.Errorf("no adapter for source %q", source)
	}

	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire browser session: %w", err)
	}
	defer s.sessions.Release(sess)

	return runner.Run(ctx, sess, query)
}
