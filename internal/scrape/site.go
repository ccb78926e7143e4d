package scrape

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pricescout/internal/domain"
)

// Site describes one store's scraping strategy as data: how to build a search
// URL, how to tell the results have rendered, where the product cards live and
// which selector chains assemble each field. The three stores share one engine
// and differ only in these values.
type Site struct {
	Source    domain.Source
	Origin    string
	SearchURL func(query string) string

	// Pre-navigation pacing, randomized per run.
	PreDelayMin time.Duration
	PreDelayMax time.Duration

	// Hardened stores get cookies/storage cleared and request headers
	// overridden before navigation.
	Hardened bool

	ReadyMarkers []string
	WaitTimeout  time.Duration

	// Incremental viewport scrolling to trigger lazy-loaded cards.
	ScrollSteps int
	ScrollBy    int

	Containers  Chain
	MaxProducts int

	TitleChain Chain
	PriceChain Chain
	URLChain   Chain
	ImageChain Chain

	RatingChain Chain
	// RatingAttr names the attribute carrying the rating label; empty means
	// the element text.
	RatingAttr string

	ReviewsChain Chain
	// ReviewsFromRating marks stores that embed the review count in the
	// rating label instead of a separate element.
	ReviewsFromRating bool
}

// LocateProducts tries the container chain against the document and returns
// the candidates from the first selector that matches anything. Nil when no
// selector matches; that is a degraded-empty outcome, not an error.
func LocateProducts(doc *goquery.Document, chain Chain) []*goquery.Selection {
	for _, candidate := range chain {
		matched := doc.Find(candidate)
		if matched.Length() == 0 {
			continue
		}
		products := make([]*goquery.Selection, 0, matched.Length())
		matched.Each(func(_ int, s *goquery.Selection) {
			products = append(products, s)
		})
		return products
	}
	return nil
}

// Parse extracts up to MaxProducts results from a rendered search page.
// Candidates missing a required field are skipped; a bad candidate never
// aborts the batch.
func (s *Site) Parse(doc *goquery.Document) []domain.ProductResult {
	candidates := LocateProducts(doc, s.Containers)

	results := make([]domain.ProductResult, 0, s.MaxProducts)
	for _, candidate := range candidates {
		if len(results) >= s.MaxProducts {
			break
		}
		if product, ok := s.product(candidate); ok {
			results = append(results, product)
		}
	}
	return results
}

// product assembles one ProductResult. Title, price and URL are required;
// image, rating and review count are best-effort.
func (s *Site) product(sel *goquery.Selection) (domain.ProductResult, bool) {
	title := ChainText(sel, s.TitleChain)
	if title == "" {
		return domain.ProductResult{}, false
	}

	price := ChainPrice(sel, s.PriceChain)
	if price <= 0 {
		return domain.ProductResult{}, false
	}

	href := s.absoluteURL(ChainAttr(sel, s.URLChain, "href"))
	if href == "" {
		return domain.ProductResult{}, false
	}

	result := domain.ProductResult{
		Title:    title,
		Price:    price,
		URL:      href,
		Source:   s.Source,
		ImageURL: ChainAttr(sel, s.ImageChain, "src"),
	}

	var ratingLabel string
	if s.RatingAttr != "" {
		ratingLabel = ChainAttr(sel, s.RatingChain, s.RatingAttr)
	} else {
		ratingLabel = ChainText(sel, s.RatingChain)
	}
	result.Rating = ParseRating(ratingLabel)

	if s.ReviewsFromRating {
		result.ReviewsCount = ParseReviewCountLabel(ratingLabel)
	} else if reviews := ChainText(sel, s.ReviewsChain); reviews != "" {
		result.ReviewsCount = ParseReviewCount(reviews)
	}

	return result, true
}

// absoluteURL normalizes a product link against the store origin. Relative
// links get the origin prefixed; links pointing at other hosts pass through.
func (s *Site) absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(s.Origin)
	if err != nil {
		return ""
	}
	rel, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}

// searchQueryValue encodes a query the way store search boxes do, with plus
// signs for spaces.
func searchQueryValue(query string) string {
	return url.QueryEscape(strings.TrimSpace(query))
}
