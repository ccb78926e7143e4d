package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrInit signals that the browser runtime could not be started. It is fatal
// for the scraping run that requested the session and is not retried here.
var ErrInit = errors.New("browser session init failed")

// Desktop user agents spanning Chrome and Firefox. One is picked uniformly at
// random per session so consecutive runs do not share a fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
}

var viewports = [][2]int{
	{1920, 1080},
	{1680, 1050},
	{1536, 864},
	{1440, 900},
}

// Headless automation leaks through navigator.webdriver; hide it before any
// site script runs.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// Session is one isolated headless browser instance with a fixed fingerprint
// (user agent, viewport) for the duration of a scraping run.
type Session struct {
	ctx       context.Context
	userAgent string
	closeOnce sync.Once
	cancels   []context.CancelFunc
}

// Context returns the chromedp task context for this session.
func (s *Session) Context() context.Context {
	return s.ctx
}

// UserAgent returns the user agent the session was created with.
func (s *Session) UserAgent() string {
	return s.userAgent
}

func (s *Session) close() {
	// Cancel in reverse order: task context first, allocator last.
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Manager creates and destroys browser sessions. Each Acquire yields a fresh
// browser process; sessions are never shared across concurrent callers.
type Manager struct {
	headless bool
	logger   *zap.Logger
}

func NewManager(headless bool, logger *zap.Logger) *Manager {
	return &Manager{headless: headless, logger: logger}
}

// Acquire launches a fingerprint-randomized browser and returns its session.
// A failure to start the browser runtime is reported as ErrInit.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	ua := userAgents[rand.Intn(len(userAgents))]
	vp := viewports[rand.Intn(len(viewports))]

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(vp[0], vp[1]),
		chromedp.UserAgent(ua),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	sess := &Session{
		ctx:       taskCtx,
		userAgent: ua,
		cancels:   []context.CancelFunc{allocCancel, taskCancel},
	}

	// The first Run starts the browser process; inject the stealth patch so
	// it applies to every document the session loads.
	err := chromedp.Run(taskCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}

	m.logger.Debug("browser session acquired",
		zap.String("user_agent", ua),
		zap.Int("viewport_w", vp[0]),
		zap.Int("viewport_h", vp[1]))
	return sess, nil
}

// Release tears the session down. Safe to call even when the underlying
// browser is already gone; repeated calls after the first are no-ops.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.close()
		m.logger.Debug("browser session released")
	})
}
