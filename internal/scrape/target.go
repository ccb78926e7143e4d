package scrape

import (
	"time"

	"pricescout/internal/domain"
)

// TargetSite returns the Target search-results scraping strategy. Target's
// grid lazy-loads on scroll and does not expose ratings on result cards.
func TargetSite() *Site {
	return &Site{
		Source:    domain.SourceTarget,
		Origin:    "https://www.target.com",
		SearchURL: func(query string) string { return "https://www.target.com/s?searchTerm=" + searchQueryValue(query) },

		PreDelayMin: 3 * time.Second,
		PreDelayMax: 5 * time.Second,
		Hardened:    true,

		ReadyMarkers: []string{
			"[data-test='product-grid']",
			"[data-test='product-card']",
			"[data-test='product-results']",
		},
		WaitTimeout: 15 * time.Second,

		ScrollSteps: 3,
		ScrollBy:    800,

		Containers: Chain{
			"[data-test='product-card']",
			"[data-test='product-grid'] > div",
			"div[data-test='product-card-default']",
		},
		MaxProducts: 10,

		TitleChain: Chain{
			"[data-test='product-title']",
			"a[href*='/p/']",
			"div[class*='Heading']",
		},
		PriceChain: Chain{
			"[data-test='product-price']",
			"span[data-test='current-price']",
			"div[data-test='product-price']",
		},
		URLChain: Chain{
			"a[href*='/p/']",
			"[data-test='product-title'] a",
			"a[data-test='product-link']",
		},
	}
}
