// Package price decomposes the compound price strings the storefronts
// render into their current/original/discount/unit components. Parsing is
// best effort and never fails: a string that matches no known pattern is
// passed through as the headline price.
package price

import (
	"regexp"
	"strings"

	"dealwatch/groceryworker/internal/store"
)

// Parsed is the decomposed price set for one product tile. Fields that
// could not be recognized are left empty.
type Parsed struct {
	Price         string
	OriginalPrice string
	Discount      string
	UnitPrice     string
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingAmountRe = regexp.MustCompile(`^\$[\d.]+`)
	saveRe          = regexp.MustCompile(`Save \$[\d.]+`)
	wasRe           = regexp.MustCompile(`Was \$[\d.]+`)
	// Coles inlines the unit price as "$1.60 per 100mL"
	perUnitRe = regexp.MustCompile(`\$[\d.]+ per \d+\w+`)
	// Woolworths appends it to the was-price as "$3.60 / 100ML"
	slashUnitRe = regexp.MustCompile(`\$[\d.]+ / \d+\w+`)
)

// Parse decomposes the raw price fields scraped from one product tile.
// rawOriginal and rawComparison come from the store's optional was-price
// and comparison-price regions and may be empty.
func Parse(key store.Key, rawPrice, rawOriginal, rawComparison string) Parsed {
	out := Parsed{Price: Clean(rawPrice)}

	// Coles folds everything into the one price string, e.g.
	// "$16.00Save $11.00$1.60 per 100mL | Was $27.00"
	if key == store.Coles && strings.Contains(out.Price, "Save") {
		raw := out.Price
		if m := leadingAmountRe.FindString(raw); m != "" {
			out.Price = m
		}
		out.Discount = saveRe.FindString(raw)
		if was := wasRe.FindString(raw); was != "" {
			out.OriginalPrice = strings.TrimPrefix(was, "Was ")
		}
		out.UnitPrice = perUnitRe.FindString(raw)
	}

	if rawOriginal != "" && out.OriginalPrice == "" {
		orig := Clean(rawOriginal)
		if key == store.Woolworths {
			if unit := slashUnitRe.FindString(orig); unit != "" && out.UnitPrice == "" {
				out.UnitPrice = unit
			}
			if m := leadingAmountRe.FindString(orig); m != "" {
				orig = m
			}
		}
		out.OriginalPrice = orig
	}

	// Aldi carries the unit price in a dedicated comparison region
	if key == store.Aldi && out.UnitPrice == "" && rawComparison != "" {
		out.UnitPrice = Clean(rawComparison)
	}

	return out
}

// Clean trims a raw text fragment and collapses internal whitespace and
// newlines to single spaces
func Clean(raw string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
}
