package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dealwatch/groceryworker/internal/store"
)

func testExtractor() *Extractor {
	fixed := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return NewWithClock(func() time.Time { return fixed })
}

func colesProfile(t *testing.T) *store.Profile {
	t.Helper()
	reg, err := store.NewRegistry()
	assert.NoError(t, err)
	p, err := reg.Get(store.Coles)
	assert.NoError(t, err)
	return p
}

func woolworthsProfile(t *testing.T) *store.Profile {
	t.Helper()
	reg, err := store.NewRegistry()
	assert.NoError(t, err)
	p, err := reg.Get(store.Woolworths)
	assert.NoError(t, err)
	return p
}

func TestExtractBasicTile(t *testing.T) {
	html := `<html><body>
		<div data-testid="product-tile">
			<a href="/product/123" data-testid="ignored">
				<h3 data-testid="product-title">Crunchy Peanut Butter 375g</h3>
			</a>
			<span data-testid="price-current">$4.50</span>
			<span data-testid="price-was">$5.50</span>
			<img data-testid="product-image" src="https://cdn.example.com/pb.jpg">
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "peanut butter")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "Crunchy Peanut Butter 375g", d.Title)
	assert.Equal(t, "$4.50", d.Price)
	assert.Equal(t, "$5.50", d.OriginalPrice)
	assert.Equal(t, store.Coles, d.Store)
	assert.Equal(t, "https://www.coles.com.au/product/123", d.URL)
	assert.Equal(t, "https://cdn.example.com/pb.jpg", d.ImageURL)
	assert.Equal(t, "peanut butter", d.SearchTerm)
	assert.Equal(t, "2025-03-14T09:30:00Z", d.DateFound)
	assert.Equal(t, "coles-peanut butter-0-1741944600000", d.ID)
}

func TestExtractCompoundPrice(t *testing.T) {
	html := `<html><body>
		<div data-testid="product-tile">
			<h3 data-testid="product-title">Olive Oil 1L</h3>
			<span data-testid="price-current">$16.00Save $11.00$1.60 per 100mL | Was $27.00</span>
			<a href="/product/oil">view</a>
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "olive oil")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "$16.00", d.Price)
	assert.Equal(t, "Save $11.00", d.Discount)
	assert.Equal(t, "$27.00", d.OriginalPrice)
	assert.Equal(t, "$1.60 per 100mL", d.UnitPrice)
}

func TestExtractShadowBoundaryFallback(t *testing.T) {
	// title and price live behind a declarative shadow boundary
	html := `<html><body>
		<wc-product-tile>
			<template shadowrootmode="open">
				<div class="product-title-container"><a href="/productdetails/42">Full Cream Milk 2L</a></div>
				<span class="primary">$3.50</span>
			</template>
		</wc-product-tile>
	</body></html>`

	deals, err := testExtractor().Extract(html, woolworthsProfile(t), "milk")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "Full Cream Milk 2L", d.Title)
	assert.Equal(t, "$3.50", d.Price)
	assert.Equal(t, "https://www.woolworths.com.au/productdetails/42", d.URL)
}

func TestExtractWoolworthsUnitPriceSplit(t *testing.T) {
	html := `<html><body>
		<wc-product-tile>
			<div class="product-title-container"><a href="/productdetails/7">Shampoo 300mL</a></div>
			<span class="primary">$7.40</span>
			<span class="was-price">$11.00

          $3.60 / 100ML</span>
		</wc-product-tile>
	</body></html>`

	deals, err := testExtractor().Extract(html, woolworthsProfile(t), "shampoo")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "$7.40", d.Price)
	assert.Equal(t, "$11.00", d.OriginalPrice)
	assert.Equal(t, "$3.60 / 100ML", d.UnitPrice)
}

func TestExtractTitleFromAriaLabel(t *testing.T) {
	html := `<html><body>
		<div data-testid="product-tile">
			<h3 data-testid="product-title"></h3>
			<span data-testid="price-current">$12.00</span>
			<a href="/product/9" aria-label="Special. Greek Style Yoghurt 1kg, $12.00. Save $3.00.">view</a>
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "yoghurt")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "Greek Style Yoghurt 1kg", deals[0].Title)
}

func TestExtractAriaLabelSegmentFallback(t *testing.T) {
	// no "<name>, $<amount>" pattern; longest non-price segment wins
	html := `<html><body>
		<div data-testid="product-tile">
			<h3 data-testid="product-title"></h3>
			<span data-testid="price-current">$2.00</span>
			<a href="/product/1" aria-label="On special. Price dropped to $2. Sourdough Bread Loaf White 680g. Ends Sunday.">view</a>
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "bread")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "Sourdough Bread Loaf White 680g", deals[0].Title)
}

func TestExtractSkipsSparseTiles(t *testing.T) {
	// a tile without title and price is a normal sparse-markup case
	html := `<html><body>
		<div data-testid="product-tile"><span class="loading-shimmer"></span></div>
		<div data-testid="product-tile">
			<h3 data-testid="product-title">Butter 250g</h3>
			<span data-testid="price-current">$5.00</span>
			<a href="/product/2">view</a>
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "butter")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "Butter 250g", deals[0].Title)
}

func TestExtractNoContainers(t *testing.T) {
	deals, err := testExtractor().Extract("<html><body><p>no products found</p></body></html>", colesProfile(t), "milk")
	assert.NoError(t, err)
	assert.Empty(t, deals)
}

func TestExtractDedupesWithinPass(t *testing.T) {
	tile := `<div data-testid="product-tile">
		<h3 data-testid="product-title">Milk 2L</h3>
		<span data-testid="price-current">$3.50</span>
		<a href="/product/3">view</a>
	</div>`
	html := "<html><body>" + tile + tile + "</body></html>"

	deals, err := testExtractor().Extract(html, colesProfile(t), "milk")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
}

func TestExtractAldiComparisonPrice(t *testing.T) {
	reg, _ := store.NewRegistry()
	aldi, err := reg.Get(store.Aldi)
	assert.NoError(t, err)

	html := `<html><body>
		<div class="product-tile">
			<div class="product-tile__name">Almond Milk 1L</div>
			<span class="base-price__regular">$2.99</span>
			<span class="base-price__comparison-price">$0.30 per 100ml</span>
			<a href="/product/almond-milk">view</a>
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, aldi, "almond milk")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "Almond Milk 1L", d.Title)
	assert.Equal(t, "$2.99", d.Price)
	assert.Equal(t, "$0.30 per 100ml", d.UnitPrice)
	assert.Equal(t, "https://www.aldi.com.au/product/almond-milk", d.URL)
}

func TestExtractImageDataSrcFallback(t *testing.T) {
	html := `<html><body>
		<div data-testid="product-tile">
			<h3 data-testid="product-title">Eggs Free Range 12pk</h3>
			<span data-testid="price-current">$6.80</span>
			<a href="/product/4">view</a>
			<img data-testid="product-image" data-src="https://cdn.example.com/eggs.jpg">
		</div>
	</body></html>`

	deals, err := testExtractor().Extract(html, colesProfile(t), "eggs")
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, "https://cdn.example.com/eggs.jpg", deals[0].ImageURL)
}
