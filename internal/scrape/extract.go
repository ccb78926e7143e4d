package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Chain is an ordered list of CSS selector candidates. Lookups try each
// candidate in priority order and take the first one that yields a value;
// exhaustion is expected-absence, never an error.
type Chain []string

var (
	decimalRe = regexp.MustCompile(`\d+\.?\d*`)
	intRe     = regexp.MustCompile(`\d[\d,]*`)
	reviewsRe = regexp.MustCompile(`(?i)([\d,]+)\s*reviews?`)

	priceCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")
)

// ChainText returns the first non-empty text found by the chain, scoped to
// the given element. Empty string when the chain exhausts.
func ChainText(sel *goquery.Selection, chain Chain) string {
	for _, candidate := range chain {
		if text := strings.TrimSpace(sel.Find(candidate).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// ChainAttr returns the first non-empty value of the named attribute found by
// the chain, scoped to the given element.
func ChainAttr(sel *goquery.Selection, chain Chain, attr string) string {
	for _, candidate := range chain {
		if val, ok := sel.Find(candidate).First().Attr(attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val
			}
		}
	}
	return ""
}

// ChainPrice runs the chain and returns the first candidate whose text parses
// to a positive price. Zero means "no valid price"; callers discard the
// product rather than treat it as free.
func ChainPrice(sel *goquery.Selection, chain Chain) float64 {
	for _, candidate := range chain {
		text := strings.TrimSpace(sel.Find(candidate).First().Text())
		if text == "" {
			continue
		}
		if price := ParsePrice(text); price > 0 {
			return price
		}
	}
	return 0
}

// ParsePrice extracts the first decimal number from a price label, ignoring
// currency symbols and thousands separators. Returns 0 on any parse failure.
func ParsePrice(text string) float64 {
	cleaned := strings.TrimSpace(priceCleaner.Replace(text))
	match := decimalRe.FindString(cleaned)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// ParseRating extracts a star rating from a label like "4.5 out of 5 stars".
// Values outside [0, 5] are treated as not-a-rating. Nil on absence.
func ParseRating(text string) *float64 {
	match := decimalRe.FindString(text)
	if match == "" {
		return nil
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil || rating < 0 || rating > 5 {
		return nil
	}
	return &rating
}

// ParseReviewCount extracts a review count from a dedicated review element,
// preferring the integer adjacent to a "reviews" token ("1,234 reviews" ->
// 1234) and falling back to the first integer ("1,234"). Nil on absence.
func ParseReviewCount(text string) *int {
	match := ""
	if m := reviewsRe.FindStringSubmatch(text); m != nil {
		match = m[1]
	} else {
		match = intRe.FindString(text)
	}
	return parseCount(match)
}

// ParseReviewCountLabel extracts a review count from a combined rating label
// ("4.5 out of 5 stars, 1,234 reviews"). Only the integer adjacent to a
// "reviews" token counts; a label carrying just the rating yields nil rather
// than mistaking the rating digits for a count.
func ParseReviewCountLabel(label string) *int {
	m := reviewsRe.FindStringSubmatch(label)
	if m == nil {
		return nil
	}
	return parseCount(m[1])
}

func parseCount(match string) *int {
	if match == "" {
		return nil
	}
	count, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil || count < 0 {
		return nil
	}
	return &count
}
