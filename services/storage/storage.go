// Package storage owns the persisted grocery document: tracked items plus
// the latest scan results. Writes replace the whole document; concurrent
// writers are not synchronized and the last one wins.
package storage

import (
	"context"

	"dealwatch/groceryworker/internal/deal"
)

// Storage is the persistence collaborator for items and scan results
type Storage interface {
	// GetItems returns all tracked grocery items
	GetItems(ctx context.Context) ([]deal.GroceryItem, error)

	// AddItem creates a tracked item. searchTerm may be empty; it then
	// defaults to the lower-cased name.
	AddItem(ctx context.Context, name, searchTerm string) (deal.GroceryItem, error)

	// RemoveItem deletes a tracked item by id
	RemoveItem(ctx context.Context, id string) error

	// UpdateItem replaces the stored item with the same id
	UpdateItem(ctx context.Context, item deal.GroceryItem) error

	// GetLastResults returns the results of the most recent scan
	GetLastResults(ctx context.Context) ([]deal.SearchResult, error)

	// SaveResults replaces the stored results as one document write and
	// moves the last-full-scan timestamp
	SaveResults(ctx context.Context, results []deal.SearchResult) error

	// GetDocument returns the whole persisted document
	GetDocument(ctx context.Context) (deal.StorageDocument, error)

	// Close releases the underlying connection
	Close() error
}
