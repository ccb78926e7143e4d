package scrape

import (
	"time"

	"pricescout/internal/domain"
)

// WalmartSite returns the Walmart search-results scraping strategy. Walmart
// runs stronger bot defenses, so the run is hardened and the grid lazy-loads
// on scroll.
func WalmartSite() *Site {
	return &Site{
		Source:    domain.SourceWalmart,
		Origin:    "https://www.walmart.com",
		SearchURL: func(query string) string { return "https://www.walmart.com/search?q=" + searchQueryValue(query) },

		PreDelayMin: 3 * time.Second,
		PreDelayMax: 5 * time.Second,
		Hardened:    true,

		ReadyMarkers: []string{
			"div[data-item-id]",
			"div[data-testid='search-results']",
			"section[data-testid='search-results']",
			"div[class*='SearchResultsGridView']",
		},
		WaitTimeout: 20 * time.Second,

		ScrollSteps: 5,
		ScrollBy:    1000,

		Containers: Chain{
			"div[data-item-id]",
			"div[data-testid='search-result']",
			"div[class*='SearchResultsGridView'] > div",
			"div[data-automation-id='product']",
		},
		MaxProducts: 15,

		TitleChain: Chain{
			"span[data-automation-id='product-title']",
			"span.w_kV",
			"div[class*='heading'] span",
			"a[class*='product-title-link']",
			"*[class*='title']",
		},
		PriceChain: Chain{
			"div[data-automation-id='product-price']",
			"span[class*='price-characteristic']",
			"span[class*='price']",
			"div[class*='price-box']",
			"*[class*='price']",
		},
		URLChain: Chain{
			"a[link-identifier='linkText']",
			"a[class*='product-title-link']",
			"a[href*='/ip/']",
			"a",
		},
		ImageChain: Chain{"img"},

		// Walmart exposes both rating and review count in one aria-label,
		// e.g. "4.5 out of 5 stars, 1,234 reviews".
		RatingChain:       Chain{"span[class*='rating']"},
		RatingAttr:        "aria-label",
		ReviewsFromRating: true,
	}
}
