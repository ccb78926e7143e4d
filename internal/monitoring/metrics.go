package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScrapesTotal       *prometheus.CounterVec
	ScrapeDuration     *prometheus.HistogramVec
	ProductsExtracted  *prometheus.CounterVec
	AlertChecksTotal   *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScrapesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_scrapes_total",
			Help: "The total number of per-site scrape runs",
		}, []string{"source", "status"}), // 'ok', 'empty', 'error'
		ScrapeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricescout_scrape_duration_seconds",
			Help:    "Duration of per-site scrape runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		ProductsExtracted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_products_extracted_total",
			Help: "The total number of products successfully extracted",
		}, []string{"source"}),
		AlertChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_alert_checks_total",
			Help: "The total number of alert recheck cycles",
		}, []string{"outcome"}), // 'checked', 'empty', 'skipped', 'error'
		NotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pricescout_notifications_total",
			Help: "The total number of price alert notifications",
		}, []string{"status"}), // 'sent', 'failed'
	}
}

// All methods are nil-safe so components can run unmetered in tests.

func (m *Metrics) ObserveScrape(source string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(source, status).Inc()
	m.ScrapeDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) AddProducts(source string, n int) {
	if m == nil {
		return
	}
	m.ProductsExtracted.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) IncAlertCheck(outcome string) {
	if m == nil {
		return
	}
	m.AlertChecksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotification(status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}
