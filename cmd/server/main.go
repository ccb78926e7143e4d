package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/alerts"
	"pricescout/internal/api"
	"pricescout/internal/browser"
	"pricescout/internal/config"
	"pricescout/internal/monitoring"
	"pricescout/internal/notify"
	"pricescout/internal/scrape"
	"pricescout/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	alertStore, err := storage.NewAlertStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer alertStore.Close()
	if err := alertStore.Init(context.Background()); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}
	cache := storage.NewSearchCache(cfg.RedisAddr, cfg.CacheTTL())

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Initialize Scraping Pipeline
	sessions := scrape.NewChromeSessions(browser.NewManager(cfg.Headless, logger))
	runners := []scrape.Runner{
		scrape.NewSiteRunner(scrape.AmazonSite(), logger),
		scrape.NewSiteRunner(scrape.WalmartSite(), logger),
		scrape.NewSiteRunner(scrape.TargetSite(), logger),
	}
	searcher := scrape.NewSearcher(sessions, runners, cache, metrics, logger)

	// Initialize Alerting
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword, logger)
	scheduler := alerts.NewScheduler(alertStore, searcher, mailer, cfg.CheckInterval(), metrics, logger)
	if err := scheduler.Start(context.Background()); err != nil {
		logger.Fatal("failed to start alert scheduler", zap.Error(err))
	}
	alertSvc := alerts.NewService(alertStore, scheduler, logger)

	// Initialize API Server
	server := api.NewServer(cfg, searcher, alertSvc, alertStore, cache, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
