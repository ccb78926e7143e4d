package domain

import (
	"math"
	"strings"
	"time"
)

// Source identifies the store a product was scraped from.
type Source string

const (
	SourceAmazon  Source = "Amazon"
	SourceWalmart Source = "Walmart"
	SourceTarget  Source = "Target"
)

// SourceForURL maps a product URL to the store that serves it by matching
// the host against the known store domains. Returns false for hosts no
// adapter covers.
func SourceForURL(rawURL string) (Source, bool) {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "amazon.com"):
		return SourceAmazon, true
	case strings.Contains(u, "walmart.com"):
		return SourceWalmart, true
	case strings.Contains(u, "target.com"):
		return SourceTarget, true
	}
	return "", false
}

// ProductResult is one normalized product listing. Title is always non-empty
// and Price always positive; candidates that cannot satisfy that are dropped
// during extraction instead of being constructed half-filled.
type ProductResult struct {
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	URL          string   `json:"url"`
	Source       Source   `json:"source"`
	ImageURL     string   `json:"image_url,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *int     `json:"reviews_count,omitempty"`
}

// PriceAlert is a persisted request to be notified once a tracked product can
// be bought at or below TargetPrice. ProductTitle doubles as the search query
// during rechecks. CurrentPrice is +Inf until the first successful recheck.
type PriceAlert struct {
	ID           int64
	UserEmail    string
	ProductURL   string
	ProductTitle string
	TargetPrice  float64
	CurrentPrice float64
	IsActive     bool
	CreatedAt    time.Time
	LastChecked  time.Time
	LastNotified *time.Time
}

// NewPriceAlert builds an active alert with the unknown-price sentinel set.
func NewPriceAlert(email, productURL, title string, targetPrice float64) *PriceAlert {
	now := time.Now().UTC()
	return &PriceAlert{
		UserEmail:    email,
		ProductURL:   productURL,
		ProductTitle: title,
		TargetPrice:  targetPrice,
		CurrentPrice: math.Inf(1),
		IsActive:     true,
		CreatedAt:    now,
		LastChecked:  now,
	}
}

// PriceKnown reports whether at least one recheck has produced a price.
func (a *PriceAlert) PriceKnown() bool {
	return !math.IsInf(a.CurrentPrice, 1)
}
