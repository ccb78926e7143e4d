package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/domain"
	"pricescout/internal/monitoring"
)

// Store is the persistence collaborator for alerts.
type Store interface {
	Create(ctx context.Context, alert *domain.PriceAlert) error
	Load(ctx context.Context, id int64) (*domain.PriceAlert, error)
	Save(ctx context.Context, alert *domain.PriceAlert) error
	Delete(ctx context.Context, id int64) error
	ListByEmail(ctx context.Context, email string) ([]domain.PriceAlert, error)
	ListActive(ctx context.Context) ([]domain.PriceAlert, error)
}

// Fetcher scrapes one store for current listings.
type Fetcher interface {
	CheckSource(ctx context.Context, source domain.Source, query string) ([]domain.ProductResult, error)
}

// Notifier delivers a threshold-crossed notification. Failure is non-fatal
// to the recheck cycle.
type Notifier interface {
	Notify(userEmail, productTitle string, currentPrice, targetPrice float64, productURL string) error
}

// Scheduler owns the recurring recheck job for every alert: a mapping from
// alert id to a cancellable job, one goroutine per job. Jobs are created on
// alert registration and removed on deletion; removal of an absent job is a
// no-op.
type Scheduler struct {
	store    Store
	fetcher  Fetcher
	notifier Notifier
	interval time.Duration
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	mu       sync.Mutex
	stopped  bool
	jobs     map[int64]context.CancelFunc
	checking map[int64]*sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(store Store, fetcher Fetcher, notifier Notifier, interval time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		jobs:     make(map[int64]context.CancelFunc),
		checking: make(map[int64]*sync.Mutex),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start reschedules every active alert. The in-memory job registry does not
// survive restarts, so alerts are re-read from storage at boot.
func (s *Scheduler) Start(ctx context.Context) error {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active alerts: %w", err)
	}
	for _, alert := range active {
		s.Schedule(alert.ID)
	}
	s.logger.Info("alert scheduler started",
		zap.Int("jobs", len(active)), zap.Duration("interval", s.interval))
	return nil
}

// Stop cancels every job and waits for in-flight rechecks to finish. Further
// Schedule calls are no-ops once Stop has begun.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
	s.logger.Info("alert scheduler stopped")
}

// Schedule creates the recurring job for an alert id. The first check runs
// immediately, then once per interval. Scheduling an already-scheduled id is
// a no-op, as is scheduling on a stopped scheduler.
func (s *Scheduler) Schedule(id int64) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if _, exists := s.jobs[id]; exists {
		s.mu.Unlock()
		return
	}
	jobCtx, cancel := context.WithCancel(s.ctx)
	s.jobs[id] = cancel
	// Registered under the lock so Stop's Wait cannot start between the
	// stopped check and the job launch.
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(jobCtx, id)
}

// Cancel removes the recurring job for an alert id, best-effort.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	cancel, exists := s.jobs[id]
	if exists {
		delete(s.jobs, id)
		delete(s.checking, id)
	}
	s.mu.Unlock()
	if exists {
		cancel()
		s.logger.Info("alert job cancelled", zap.Int64("alert_id", id))
	}
}

func (s *Scheduler) run(ctx context.Context, id int64) {
	defer s.wg.Done()

	s.Recheck(ctx, id)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Recheck(ctx, id)
		}
	}
}

// lockFor returns the per-alert mutex that serializes concurrent rechecks of
// the same id. Different ids may recheck in parallel.
func (s *Scheduler) lockFor(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.checking[id]
	if !ok {
		l = &sync.Mutex{}
		s.checking[id] = l
	}
	return l
}

// Recheck runs one price check cycle for the alert: look it up, scrape the
// store its product URL belongs to, record the best available offer and
// notify once if the target was crossed. Missing, inactive and unsupported
// alerts are no-ops.
func (s *Scheduler) Recheck(ctx context.Context, id int64) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	alert, err := s.store.Load(ctx, id)
	if err != nil {
		s.logger.Warn("alert not loadable, skipping recheck",
			zap.Int64("alert_id", id), zap.Error(err))
		s.metrics.IncAlertCheck("skipped")
		return
	}
	if !alert.IsActive {
		s.metrics.IncAlertCheck("skipped")
		return
	}

	source, supported := domain.SourceForURL(alert.ProductURL)
	if !supported {
		s.logger.Warn("unsupported store for alert",
			zap.Int64("alert_id", id), zap.String("product_url", alert.ProductURL))
		s.metrics.IncAlertCheck("skipped")
		return
	}

	results, err := s.fetcher.CheckSource(ctx, source, alert.ProductTitle)
	if err != nil {
		s.logger.Warn("alert recheck scrape failed",
			zap.Int64("alert_id", id), zap.Error(err))
		s.metrics.IncAlertCheck("error")
		return
	}
	if len(results) == 0 {
		s.logger.Info("alert recheck found no listings", zap.Int64("alert_id", id))
		s.metrics.IncAlertCheck("empty")
		return
	}

	// Best available offer across the store's listings, not necessarily the
	// exact originally-tracked listing.
	lowest := results[0].Price
	for _, r := range results[1:] {
		if r.Price < lowest {
			lowest = r.Price
		}
	}

	now := time.Now().UTC()
	alert.CurrentPrice = lowest
	alert.LastChecked = now

	if lowest <= alert.TargetPrice {
		if err := s.notifier.Notify(alert.UserEmail, alert.ProductTitle, lowest, alert.TargetPrice, alert.ProductURL); err != nil {
			// Logged, not fatal; the price update below still lands and the
			// next cycle may notify again.
			s.logger.Warn("price alert notification failed",
				zap.Int64("alert_id", id), zap.Error(err))
			s.metrics.IncNotification("failed")
		} else {
			notified := now
			alert.LastNotified = &notified
			s.metrics.IncNotification("sent")
		}
	}

	if err := s.store.Save(ctx, alert); err != nil {
		s.logger.Error("failed to save alert after recheck",
			zap.Int64("alert_id", id), zap.Error(err))
		s.metrics.IncAlertCheck("error")
		return
	}

	s.metrics.IncAlertCheck("checked")
	s.logger.Info("alert rechecked",
		zap.Int64("alert_id", id),
		zap.Float64("current_price", lowest),
		zap.Float64("target_price", alert.TargetPrice))
}
