package store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownStore is returned for keys outside the closed store set
var ErrUnknownStore = errors.New("unknown store")

// Key identifies a supported retail storefront
type Key string

const (
	Coles      Key = "coles"
	Woolworths Key = "woolworths"
	Aldi       Key = "aldi"
)

// Selectors contains the content locators used to extract product tiles
// from a rendered search page
type Selectors struct {
	ProductContainer string
	Title            string
	Price            string
	OriginalPrice    string
	Discount         string
	Link             string
	Image            string
	// ComparisonPrice is a secondary region carrying a per-quantity price,
	// disjoint from the headline price (Aldi)
	ComparisonPrice string
}

// Profile is the static per-store configuration: display name, URLs and
// the selector set used by the extractor. Profiles are built once at
// registry construction and never mutated.
type Profile struct {
	Key         Key
	DisplayName string
	BaseURL     string
	Selectors   Selectors

	searchURL func(term string) string
}

// SearchURL builds the storefront search URL for a term
func (p *Profile) SearchURL(term string) string {
	return p.searchURL(term)
}

// ResolveURL resolves a possibly-relative href against the store's base URL
func (p *Profile) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return p.BaseURL + href
}

// Registry is the closed set of store profiles. Unknown keys are rejected
// at construction and lookup, not silently defaulted.
type Registry struct {
	profiles map[Key]*Profile
	order    []Key
}

// NewRegistry builds and validates the static store registry
func NewRegistry() (*Registry, error) {
	profiles := []*Profile{
		{
			Key:         Coles,
			DisplayName: "Coles",
			BaseURL:     "https://www.coles.com.au",
			searchURL: func(term string) string {
				return "https://www.coles.com.au/search/products?q=" + url.QueryEscape(term) + "&filter_Special=all"
			},
			Selectors: Selectors{
				ProductContainer: `[data-testid="product-tile"]`,
				Title:            `[data-testid="product-title"], .product-title, h3, h2`,
				Price:            `[data-testid="product_price"], [data-testid="price-current"], .price, .product-price`,
				OriginalPrice:    `[data-testid="price-was"], .was-price, .original-price`,
				Discount:         `[data-testid="price-discount"], .discount, .save-amount`,
				Link:             `a[href*="/product/"], a`,
				Image:            `img[data-testid="product-image"], img`,
			},
		},
		{
			Key:         Woolworths,
			DisplayName: "Woolworths",
			BaseURL:     "https://www.woolworths.com.au",
			searchURL: func(term string) string {
				return "https://www.woolworths.com.au/shop/search/products?searchTerm=" + url.QueryEscape(term) + "&isSpecial=true"
			},
			Selectors: Selectors{
				ProductContainer: `wc-product-tile, shared-product-tile`,
				Title:            `.product-title-container a, .product-title-container, .title a, .title, [class*="title"], a`,
				Price:            `.primary, .current-price, [class*="current"], .price`,
				OriginalPrice:    `.was-price, .secondary, [class*="was"]`,
				Discount:         `.save-price, [class*="save"]`,
				Link:             `.title a, .product-tile-image a, a[href*="/productdetails/"], a`,
				Image:            `.product-tile-image img[src*="assets.woolworths.com.au"], .product-tile-image img[title], img[src*="assets.woolworths.com.au"]`,
			},
		},
		{
			Key:         Aldi,
			DisplayName: "Aldi",
			BaseURL:     "https://www.aldi.com.au",
			searchURL: func(term string) string {
				return "https://www.aldi.com.au/results?q=" + url.QueryEscape(term)
			},
			Selectors: Selectors{
				ProductContainer: `.product-tile:has(.product-tile__name):has(.base-price__regular), .product-tile`,
				Title:            `.product-tile__name, [class*="product-tile__name"]`,
				Price:            `.base-price__regular, [class*="base-price__regular"]`,
				OriginalPrice:    `.base-price__was, [class*="was"]`,
				Discount:         `.base-price__save, [class*="save"]`,
				Link:             `a[href*="/product/"], a`,
				Image:            `img[srcset], img`,
				ComparisonPrice:  `.base-price__comparison-price`,
			},
		},
	}

	reg := &Registry{profiles: make(map[Key]*Profile, len(profiles))}
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		if _, dup := reg.profiles[p.Key]; dup {
			return nil, fmt.Errorf("duplicate store profile %q", p.Key)
		}
		reg.profiles[p.Key] = p
		reg.order = append(reg.order, p.Key)
	}
	return reg, nil
}

func validateProfile(p *Profile) error {
	if p.Key == "" || p.DisplayName == "" {
		return fmt.Errorf("store profile missing key or display name")
	}
	if _, err := url.ParseRequestURI(p.BaseURL); err != nil {
		return fmt.Errorf("store %q has invalid base URL: %w", p.Key, err)
	}
	if p.searchURL == nil {
		return fmt.Errorf("store %q has no search URL builder", p.Key)
	}
	s := p.Selectors
	if s.ProductContainer == "" || s.Title == "" || s.Price == "" || s.Link == "" {
		return fmt.Errorf("store %q is missing required selectors", p.Key)
	}
	return nil
}

// Get returns the profile for a key, or an error for keys outside the
// closed set
func (r *Registry) Get(key Key) (*Profile, error) {
	p, ok := r.profiles[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStore, key)
	}
	return p, nil
}

// Profiles returns all profiles in declaration order
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.profiles[key])
	}
	return out
}

// Keys returns the registry keys in declaration order
func (r *Registry) Keys() []Key {
	return append([]Key(nil), r.order...)
}
