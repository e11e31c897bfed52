package deal

import (
	"fmt"
	"time"

	"dealwatch/groceryworker/internal/store"
)

// GroceryItem is a user-tracked product searched for on every scan
type GroceryItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SearchTerm string `json:"searchTerm"`
	DateAdded  string `json:"dateAdded"`
}

// Deal is a normalized, store-attributed promotional listing
type Deal struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Price         string    `json:"price"`
	OriginalPrice string    `json:"originalPrice,omitempty"`
	Discount      string    `json:"discount,omitempty"`
	UnitPrice     string    `json:"unitPrice,omitempty"`
	Store         store.Key `json:"store"`
	URL           string    `json:"url"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	SearchTerm    string    `json:"searchTerm"`
	DateFound     string    `json:"dateFound"`
}

// SearchResult is the per-item outcome of one scan run. Error is set only
// when the whole per-item pipeline failed; individual store failures
// degrade to missing deals instead.
type SearchResult struct {
	SearchTerm  string `json:"searchTerm"`
	Deals       []Deal `json:"deals"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// StorageDocument is the persisted whole-document state: tracked items plus
// the latest scan results. Saved as a single replace, last writer wins.
type StorageDocument struct {
	GroceryItems []GroceryItem  `json:"groceryItems"`
	LastResults  []SearchResult `json:"lastResults"`
	LastFullScan string         `json:"lastFullScan"`
}

// NewID derives a deal ID unique within one scraping run
func NewID(key store.Key, searchTerm string, index int, capturedAt time.Time) string {
	return fmt.Sprintf("%s-%s-%d-%d", key, searchTerm, index, capturedAt.UnixMilli())
}
