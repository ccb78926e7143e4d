package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pricescout/internal/domain"
	"pricescout/internal/storage"
)

type createAlertRequest struct {
	UserEmail    string  `json:"user_email"`
	ProductURL   string  `json:"product_url"`
	ProductTitle string  `json:"product_title"`
	TargetPrice  float64 `json:"target_price"`
}

type alertResponse struct {
	ID           int64      `json:"id"`
	UserEmail    string     `json:"user_email"`
	ProductURL   string     `json:"product_url"`
	ProductTitle string     `json:"product_title"`
	TargetPrice  float64    `json:"target_price"`
	CurrentPrice *float64   `json:"current_price"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastChecked  time.Time  `json:"last_checked"`
	LastNotified *time.Time `json:"last_notified,omitempty"`
}

func toAlertResponse(a *domain.PriceAlert) alertResponse {
	resp := alertResponse{
		ID:           a.ID,
		UserEmail:    a.UserEmail,
		ProductURL:   a.ProductURL,
		ProductTitle: a.ProductTitle,
		TargetPrice:  a.TargetPrice,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		LastChecked:  a.LastChecked,
		LastNotified: a.LastNotified,
	}
	// current_price is null until the first recheck produces a price.
	if a.PriceKnown() {
		price := a.CurrentPrice
		resp.CurrentPrice = &price
	}
	return resp
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []domain.ProductResult{}
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserEmail == "" || req.ProductURL == "" || req.ProductTitle == "" {
		s.respondWithError(w, http.StatusBadRequest, "user_email, product_url and product_title are required")
		return
	}
	if req.TargetPrice <= 0 {
		s.respondWithError(w, http.StatusBadRequest, "target_price must be positive")
		return
	}

	alert, err := s.alerts.Create(r.Context(), req.UserEmail, req.ProductURL, req.ProductTitle, req.TargetPrice)
	if err != nil {
		s.logger.Error("failed to create alert", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not create alert")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, toAlertResponse(alert))
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.respondWithError(w, http.StatusBadRequest, "Query parameter 'email' is required")
		return
	}

	list, err := s.alerts.List(r.Context(), email)
	if err != nil {
		s.logger.Error("failed to list alerts", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not list alerts")
		return
	}

	resp := make([]alertResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toAlertResponse(&list[i]))
	}
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid alert id")
		return
	}

	if err := s.alerts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Alert not found")
			return
		}
		s.logger.Error("failed to delete alert", zap.Int64("alert_id", id), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not delete alert")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Alert deleted successfully"})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.alertStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.cache.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
