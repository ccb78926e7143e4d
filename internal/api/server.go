package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/alerts"
	"pricescout/internal/config"
	"pricescout/internal/scrape"
	"pricescout/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	searcher   *scrape.Searcher
	alerts     *alerts.Service
	alertStore *storage.AlertStore
	cache      *storage.SearchCache
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, searcher *scrape.Searcher, alertSvc *alerts.Service, alertStore *storage.AlertStore, cache *storage.SearchCache, logger *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		searcher:   searcher,
		alerts:     alertSvc,
		alertStore: alertStore,
		cache:      cache,
		logger:     logger,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.config.ServerPort),
		Handler: s.router,
		// Search runs drive a real browser across three stores; allow for it.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
