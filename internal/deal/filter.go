package deal

import "strings"

// FilterExactMatches keeps only deals relevant to the tracked item. A deal
// matches when at least one candidate term (the item name or its search
// term) has every whitespace-separated word present as a substring of the
// deal title, case-insensitive and order-independent. The output is always
// a subset of the input.
func FilterExactMatches(deals []Deal, item GroceryItem) []Deal {
	terms := candidateTerms(item)
	out := make([]Deal, 0, len(deals))
	if len(terms) == 0 {
		return out
	}

	for _, d := range deals {
		title := strings.ToLower(strings.TrimSpace(d.Title))
		if matchesAnyTerm(title, terms) {
			out = append(out, d)
		}
	}
	return out
}

// candidateTerms lowers and trims the item name and search term, dropping
// empties and duplicates
func candidateTerms(item GroceryItem) []string {
	var terms []string
	seen := make(map[string]struct{}, 2)
	for _, raw := range []string{item.Name, item.SearchTerm} {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

func matchesAnyTerm(title string, terms []string) bool {
	for _, term := range terms {
		if containsAllWords(title, strings.Fields(term)) {
			return true
		}
	}
	return false
}

func containsAllWords(title string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		if !strings.Contains(title, word) {
			return false
		}
	}
	return true
}
