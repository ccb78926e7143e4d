package scrape

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"pricescout/internal/domain"
)

type fakeSession struct{}

func (fakeSession) Context() context.Context { return context.Background() }
func (fakeSession) UserAgent() string        { return "test-agent" }

type fakeSessions struct {
	acquireErr error
	acquired   int
	released   int
}

func (f *fakeSessions) Acquire(ctx context.Context) (Session, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquired++
	return fakeSession{}, nil
}

func (f *fakeSessions) Release(Session) { f.released++ }

type fakeRunner struct {
	source  domain.Source
	results []domain.ProductResult
	err     error
	calls   int
}

func (r *fakeRunner) Source() domain.Source { return r.source }

func (r *fakeRunner) Run(ctx context.Context, sess Session, query string) ([]domain.ProductResult, error) {
	r.calls++
	return r.results, r.err
}

type fakeCache struct {
	hits map[string][]domain.ProductResult
	sets int
}

func (c *fakeCache) Get(ctx context.Context, query string) ([]domain.ProductResult, bool) {
	results, ok := c.hits[query]
	return results, ok
}

func (c *fakeCache) Set(ctx context.Context, query string, results []domain.ProductResult) {
	c.sets++
}

func product(source domain.Source, title string, price float64) domain.ProductResult {
	return domain.ProductResult{Title: title, Price: price, URL: "https://example.com/p", Source: source}
}

func newTestSearcher(sessions Sessions, runners []Runner, cache Cache) *Searcher {
	s := NewSearcher(sessions, runners, cache, nil, zap.NewNop())
	s.delayMin, s.delayMax = 0, 0
	return s
}

func TestSearchSortsByPriceStable(t *testing.T) {
	sessions := &fakeSessions{}
	runners := []Runner{
		&fakeRunner{source: domain.SourceAmazon, results: []domain.ProductResult{
			product(domain.SourceAmazon, "a1", 30),
			product(domain.SourceAmazon, "a2", 10),
		}},
		&fakeRunner{source: domain.SourceWalmart, results: []domain.ProductResult{
			product(domain.SourceWalmart, "w1", 10),
			product(domain.SourceWalmart, "w2", 20),
		}},
	}

	results, err := newTestSearcher(sessions, runners, nil).Search(context.Background(), "widget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Price < results[i-1].Price {
			t.Fatalf("results not sorted ascending at %d: %v", i, results)
		}
	}
	// Equal prices keep concatenation order: Amazon ran before Walmart.
	if results[0].Title != "a2" || results[1].Title != "w1" {
		t.Errorf("tie order broken: got %q then %q, want a2 then w1", results[0].Title, results[1].Title)
	}
}

func TestSearchPartialResults(t *testing.T) {
	sessions := &fakeSessions{}
	runners := []Runner{
		&fakeRunner{source: domain.SourceAmazon, err: errors.New("navigation failed")},
		&fakeRunner{source: domain.SourceWalmart, results: []domain.ProductResult{
			product(domain.SourceWalmart, "w1", 5),
		}},
		&fakeRunner{source: domain.SourceTarget}, // empty, not an error
	}

	results, err := newTestSearcher(sessions, runners, nil).Search(context.Background(), "widget")
	if err != nil {
		t.Fatalf("Search should not fail on a degraded source: %v", err)
	}
	if len(results) != 1 || results[0].Title != "w1" {
		t.Fatalf("got %v, want the single Walmart result", results)
	}
}

func TestSearchReleasesSessionExactlyOnce(t *testing.T) {
	sessions := &fakeSessions{}
	runners := []Runner{
		&fakeRunner{source: domain.SourceAmazon}, // empty (container timeout)
		&fakeRunner{source: domain.SourceWalmart, err: errors.New("browser crashed")},
		&fakeRunner{source: domain.SourceTarget, results: []domain.ProductResult{
			product(domain.SourceTarget, "t1", 7),
		}},
	}

	if _, err := newTestSearcher(sessions, runners, nil).Search(context.Background(), "widget"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if sessions.acquired != 1 || sessions.released != 1 {
		t.Fatalf("acquired=%d released=%d, want exactly one of each", sessions.acquired, sessions.released)
	}
}

func TestSearchAcquireFailure(t *testing.T) {
	sessions := &fakeSessions{acquireErr: errors.New("chrome not found")}
	runner := &fakeRunner{source: domain.SourceAmazon}

	_, err := newTestSearcher(sessions, []Runner{runner}, nil).Search(context.Background(), "widget")
	if err == nil {
		t.Fatal("Search should surface session init failure")
	}
	if runner.calls != 0 {
		t.Errorf("runner invoked %d times despite init failure", runner.calls)
	}
	if sessions.released != 0 {
		t.Errorf("released %d sessions that were never acquired", sessions.released)
	}
}

func TestSearchCacheHitSkipsBrowser(t *testing.T) {
	sessions := &fakeSessions{}
	cached := []domain.ProductResult{product(domain.SourceAmazon, "cached", 1)}
	cache := &fakeCache{hits: map[string][]domain.ProductResult{"widget": cached}}

	results, err := newTestSearcher(sessions, nil, cache).Search(context.Background(), "widget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "cached" {
		t.Fatalf("got %v, want cached result", results)
	}
	if sessions.acquired != 0 {
		t.Errorf("acquired %d sessions on a cache hit", sessions.acquired)
	}
}

func TestCheckSourceDispatch(t *testing.T) {
	sessions := &fakeSessions{}
	amazon := &fakeRunner{source: domain.SourceAmazon, results: []domain.ProductResult{
		product(domain.SourceAmazon, "a", 3),
	}}
	walmart := &fakeRunner{source: domain.SourceWalmart}
	searcher := newTestSearcher(sessions, []Runner{amazon, walmart}, nil)

	results, err := searcher.CheckSource(context.Background(), domain.SourceAmazon, "widget")
	if err != nil {
		t.Fatalf("CheckSource: %v", err)
	}
	if len(results) != 1 || walmart.calls != 0 {
		t.Fatalf("wrong adapter dispatched: amazon=%d walmart=%d", amazon.calls, walmart.calls)
	}
	if sessions.acquired != 1 || sessions.released != 1 {
		t.Fatalf("acquired=%d released=%d, want exactly one of each", sessions.acquired, sessions.released)
	}

	if _, err := searcher.CheckSource(context.Background(), domain.SourceTarget, "widget"); err == nil {
		t.Fatal("CheckSource should fail for a source with no adapter")
	}
}
