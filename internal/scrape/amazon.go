package scrape

import (
	"time"

	"pricescout/internal/domain"
)

// AmazonSite returns the Amazon search-results scraping strategy.
func AmazonSite() *Site {
	return &Site{
		Source:    domain.SourceAmazon,
		Origin:    "https://www.amazon.com",
		SearchURL: func(query string) string { return "https://www.amazon.com/s?k=" + searchQueryValue(query) },

		PreDelayMin: 2 * time.Second,
		PreDelayMax: 4 * time.Second,

		ReadyMarkers: []string{"div.s-main-slot"},
		WaitTimeout:  15 * time.Second,

		Containers: Chain{
			"div.s-result-item[data-component-type='s-search-result']",
			"div.sg-col-4-of-12",
			"div.sg-col-4-of-16",
		},
		MaxProducts: 10,

		TitleChain: Chain{
			"h2 a span",
			"h2 span.a-text-normal",
			"span.a-text-normal",
			"a.a-link-normal span",
		},
		PriceChain: Chain{
			"span.a-price span.a-offscreen",
			"span.a-price-whole",
			"span.a-price",
		},
		URLChain: Chain{
			"h2 a",
			"a.a-link-normal",
			"a[href*='/dp/']",
		},
		ImageChain: Chain{
			"img.s-image",
			"img[data-image-load]",
		},
		RatingChain:  Chain{"span.a-icon-alt"},
		ReviewsChain: Chain{"span.a-size-base.s-underline-text"},
	}
}
