package scrape

import (
	"fmt"
	"testing"

	"pricescout/internal/domain"
)

func TestLocateProductsFallback(t *testing.T) {
	d := doc(t, `<main>
		<div class="item">a</div>
		<div class="item">b</div>
		<div class="item">c</div>
	</main>`)

	chain := Chain{".missing-a", ".missing-b", ".item"}
	products := LocateProducts(d, chain)
	if len(products) != 3 {
		t.Fatalf("LocateProducts returned %d candidates, want 3", len(products))
	}
}

func TestLocateProductsNoMatch(t *testing.T) {
	d := doc(t, `<main><div class="item">a</div></main>`)

	if products := LocateProducts(d, Chain{".x", ".y"}); products != nil {
		t.Fatalf("LocateProducts returned %d candidates, want none", len(products))
	}
}

func TestAmazonParse(t *testing.T) {
	d := doc(t, `<div class="s-main-slot">
		<div class="s-result-item" data-component-type="s-search-result">
			<h2><a href="/dp/B001"><span>Widget One</span></a></h2>
			<span class="a-price"><span class="a-offscreen">$19.99</span></span>
			<img class="s-image" src="https://img.example.com/1.jpg"/>
			<span class="a-icon-alt">4.5 out of 5 stars</span>
			<span class="a-size-base s-underline-text">1,234</span>
		</div>
		<div class="s-result-item" data-component-type="s-search-result">
			<h2><a href="/dp/B002"><span>Widget No Price</span></a></h2>
		</div>
		<div class="s-result-item" data-component-type="s-search-result">
			<span class="a-price"><span class="a-offscreen">$9.99</span></span>
		</div>
	</div>`)

	results := AmazonSite().Parse(d)
	if len(results) != 1 {
		t.Fatalf("Parse returned %d products, want 1 (missing-field candidates skipped)", len(results))
	}

	p := results[0]
	if p.Title != "Widget One" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Price != 19.99 {
		t.Errorf("Price = %v, want 19.99", p.Price)
	}
	if p.URL != "https://www.amazon.com/dp/B001" {
		t.Errorf("URL = %q, want absolutized product link", p.URL)
	}
	if p.Source != domain.SourceAmazon {
		t.Errorf("Source = %q", p.Source)
	}
	if p.ImageURL != "https://img.example.com/1.jpg" {
		t.Errorf("ImageURL = %q", p.ImageURL)
	}
	if p.Rating == nil || *p.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", p.Rating)
	}
	if p.ReviewsCount == nil || *p.ReviewsCount != 1234 {
		t.Errorf("ReviewsCount = %v, want 1234", p.ReviewsCount)
	}
}

func TestWalmartParseCombinedRatingLabel(t *testing.T) {
	d := doc(t, `<section>
		<div data-item-id="w1">
			<span data-automation-id="product-title">Gizmo Deluxe</span>
			<div data-automation-id="product-price">$24.97</div>
			<a link-identifier="linkText" href="https://www.walmart.com/ip/123">link</a>
			<img src="https://img.example.com/w.jpg"/>
			<span class="rating-stars" aria-label="4.2 out of 5 stars, 321 reviews">stars</span>
		</div>
	</section>`)

	results := WalmartSite().Parse(d)
	if len(results) != 1 {
		t.Fatalf("Parse returned %d products, want 1", len(results))
	}

	p := results[0]
	if p.Title != "Gizmo Deluxe" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Price != 24.97 {
		t.Errorf("Price = %v, want 24.97", p.Price)
	}
	if p.Rating == nil || *p.Rating != 4.2 {
		t.Errorf("Rating = %v, want 4.2", p.Rating)
	}
	if p.ReviewsCount == nil || *p.ReviewsCount != 321 {
		t.Errorf("ReviewsCount = %v, want 321", p.ReviewsCount)
	}
}

func TestWalmartParseRatingOnlyLabel(t *testing.T) {
	d := doc(t, `<section>
		<div data-item-id="w2">
			<span data-automation-id="product-title">Gizmo Basic</span>
			<div data-automation-id="product-price">$9.97</div>
			<a link-identifier="linkText" href="https://www.walmart.com/ip/456">link</a>
			<span class="rating-stars" aria-label="4.6 out of 5 stars">stars</span>
		</div>
	</section>`)

	results := WalmartSite().Parse(d)
	if len(results) != 1 {
		t.Fatalf("Parse returned %d products, want 1", len(results))
	}

	p := results[0]
	if p.Rating == nil || *p.Rating != 4.6 {
		t.Errorf("Rating = %v, want 4.6", p.Rating)
	}
	if p.ReviewsCount != nil {
		t.Errorf("ReviewsCount = %d, want nil when the label has no reviews clause", *p.ReviewsCount)
	}
}

func TestTargetParseRelativeURL(t *testing.T) {
	d := doc(t, `<div data-test="product-grid">
		<div data-test="product-card">
			<a data-test="product-title" href="/p/thing/-/A-1">Thing</a>
			<span data-test="product-price">$14.50</span>
		</div>
	</div>`)

	results := TargetSite().Parse(d)
	if len(results) != 1 {
		t.Fatalf("Parse returned %d products, want 1", len(results))
	}
	if results[0].URL != "https://www.target.com/p/thing/-/A-1" {
		t.Errorf("URL = %q, want origin-prefixed link", results[0].URL)
	}
	if results[0].Rating != nil || results[0].ReviewsCount != nil {
		t.Errorf("Rating/ReviewsCount should be absent for Target cards")
	}
}

func TestParseHonorsCandidateCap(t *testing.T) {
	html := "<main>"
	for i := 0; i < 6; i++ {
		html += fmt.Sprintf(`<div class="card">
			<span class="t">Item %d</span>
			<span class="p">$%d.00</span>
			<a class="u" href="/item/%d">go</a>
		</div>`, i, i+1, i)
	}
	html += "</main>"

	site := &Site{
		Source:      domain.SourceAmazon,
		Origin:      "https://example.com",
		Containers:  Chain{".card"},
		MaxProducts: 3,
		TitleChain:  Chain{".t"},
		PriceChain:  Chain{".p"},
		URLChain:    Chain{".u"},
	}

	results := site.Parse(doc(t, html))
	if len(results) != 3 {
		t.Fatalf("Parse returned %d products, want cap of 3", len(results))
	}
}
