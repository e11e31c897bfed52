// Package extract turns a rendered search page into normalized Deal
// records using the store's selector profile. Sparse markup is expected:
// candidates that never yield a title and price are skipped silently.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealwatch/groceryworker/internal/deal"
	"dealwatch/groceryworker/internal/price"
	"dealwatch/groceryworker/internal/store"
	errs "dealwatch/groceryworker/pkg/errors"
)

// shadowBoundary locates a declarative shadow tree attached to a product
// tile. Some storefronts encapsulate tile markup behind one.
const shadowBoundary = "template[shadowrootmode]"

var (
	// "Product Name, $12.00" inside an accessible label
	ariaTitleRe = regexp.MustCompile(`([^.]+),\s*\$[\d.]+`)
	promoRe     = regexp.MustCompile(`^(?i:Special\.|On special\.|Save \$[\d.]+\.?\s*)`)
)

// Extractor assembles deals from page content
type Extractor struct {
	now func() time.Time
}

// New creates an extractor using the wall clock for capture timestamps
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// NewWithClock creates an extractor with a fixed clock, for deterministic
// IDs and timestamps in tests
func NewWithClock(now func() time.Time) *Extractor {
	return &Extractor{now: now}
}

// Extract locates all product containers in the page and assembles one
// deal per extractable candidate. Zero container matches is a normal
// empty result, not an error. The returned deals are deduplicated by
// (normalized title, price) within this pass.
func (e *Extractor) Extract(html string, profile *store.Profile, searchTerm string) ([]deal.Deal, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.NewParsing(string(profile.Key), "failed to parse page content", err)
	}

	capturedAt := e.now()
	var deals []deal.Deal
	doc.Find(profile.Selectors.ProductContainer).Each(func(i int, s *goquery.Selection) {
		if d := extractCandidate(s, profile, searchTerm, i, capturedAt); d != nil {
			deals = append(deals, *d)
		}
	})

	return deal.Dedupe(deals), nil
}

// extractCandidate pulls the raw text and attributes for one product tile
// and runs them through the price parser. Returns nil when the tile has no
// usable title or price after all fallbacks.
func extractCandidate(s *goquery.Selection, profile *store.Profile, searchTerm string, index int, capturedAt time.Time) *deal.Deal {
	sel := profile.Selectors

	titleSel := locate(s, sel.Title)
	priceSel := locate(s, sel.Price)
	linkSel := locate(s, sel.Link)
	if linkSel == nil {
		// fall back to any anchor inside the tile
		if any := s.Find("a").First(); any.Length() > 0 {
			linkSel = any
		}
	}

	title := text(titleSel)
	if title == "" && linkSel != nil {
		if label, ok := linkSel.Attr("aria-label"); ok {
			title = titleFromLabel(label)
		}
	}

	rawPrice := text(priceSel)
	if title == "" || rawPrice == "" {
		return nil
	}

	parsed := price.Parse(profile.Key, rawPrice, text(locate(s, sel.OriginalPrice)), text(locate(s, sel.ComparisonPrice)))

	discount := parsed.Discount
	if discount == "" {
		discount = text(locate(s, sel.Discount))
	}

	var pageURL string
	if linkSel != nil {
		if href, ok := linkSel.Attr("href"); ok {
			pageURL = profile.ResolveURL(href)
		}
	}

	var imageURL string
	if imgSel := locate(s, sel.Image); imgSel != nil {
		imageURL = imgSel.AttrOr("src", "")
		if imageURL == "" {
			imageURL = imgSel.AttrOr("data-src", "")
		}
	}

	return &deal.Deal{
		ID:            deal.NewID(profile.Key, searchTerm, index, capturedAt),
		Title:         title,
		Price:         parsed.Price,
		OriginalPrice: parsed.OriginalPrice,
		Discount:      discount,
		UnitPrice:     parsed.UnitPrice,
		Store:         profile.Key,
		URL:           pageURL,
		ImageURL:      imageURL,
		SearchTerm:    searchTerm,
		DateFound:     capturedAt.UTC().Format(time.RFC3339),
	}
}

// locate finds the first element matching selector inside the candidate,
// falling back to the same selector inside an attached shadow boundary
// when the regular tree has no match. Returns nil on a miss.
func locate(s *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return nil
	}
	if found := s.Find(selector); found.Length() > 0 {
		return found.First()
	}
	if shadow := s.Find(shadowBoundary); shadow.Length() > 0 {
		if found := shadow.Find(selector); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

func text(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Text())
}

// titleFromLabel derives a product title from a link's accessible label.
// Labels look like "Special. Product Name, $12.00. Save $3.00." so first
// try the name-before-price pattern, then fall back to the longest
// sentence segment that is not price noise.
func titleFromLabel(label string) string {
	if m := ariaTitleRe.FindStringSubmatch(label); m != nil {
		return strings.TrimSpace(promoRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	}

	parts := strings.Split(label, ".")
	longest := ""
	for _, part := range parts {
		if len(part) > 10 && !strings.Contains(part, "$") && len(part) > len(longest) {
			longest = part
		}
	}
	if longest == "" && len(parts) > 0 {
		longest = parts[0]
	}
	return strings.TrimSpace(longest)
}
