package deal

import "strings"

// Dedupe collapses deals that share a normalized title and identical price,
// keeping the first occurrence in input order. Idempotent.
func Dedupe(deals []Deal) []Deal {
	seen := make(map[string]struct{}, len(deals))
	out := make([]Deal, 0, len(deals))
	for _, d := range deals {
		key := strings.ToLower(strings.TrimSpace(d.Title)) + "\x00" + d.Price
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}
