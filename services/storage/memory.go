package storage

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"dealwatch/groceryworker/internal/deal"
	errs "dealwatch/groceryworker/pkg/errors"
)

// MemoryStorage is an in-process Storage for tests and redis-less runs
type MemoryStorage struct {
	mu  sync.Mutex
	doc deal.StorageDocument
	now func() time.Time
	seq int64
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{doc: emptyDocument(), now: time.Now}
}

// GetItems returns all tracked grocery items
func (s *MemoryStorage) GetItems(ctx context.Context) ([]deal.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]deal.GroceryItem(nil), s.doc.GroceryItems...), nil
}

// AddItem creates a tracked item with a generated id and timestamp
func (s *MemoryStorage) AddItem(ctx context.Context, name, searchTerm string) (deal.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.seq++
	item := deal.GroceryItem{
		ID:         strconv.FormatInt(now.UnixMilli()+s.seq, 10),
		Name:       name,
		SearchTerm: searchTerm,
		DateAdded:  now.UTC().Format(time.RFC3339),
	}
	if item.SearchTerm == "" {
		item.SearchTerm = strings.ToLower(name)
	}
	s.doc.GroceryItems = append(s.doc.GroceryItems, item)
	return item, nil
}

// RemoveItem deletes a tracked item by id
func (s *MemoryStorage) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.GroceryItems[:0]
	for _, item := range s.doc.GroceryItems {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.doc.GroceryItems = kept
	return nil
}

// UpdateItem replaces the stored item with the same id
func (s *MemoryStorage) UpdateItem(ctx context.Context, item deal.GroceryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.GroceryItems {
		if s.doc.GroceryItems[i].ID == item.ID {
			s.doc.GroceryItems[i] = item
			return nil
		}
	}
	return errs.NewStorage("no item with id "+item.ID, nil)
}

// GetLastResults returns the results of the most recent scan
func (s *MemoryStorage) GetLastResults(ctx context.Context) ([]deal.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]deal.SearchResult(nil), s.doc.LastResults...), nil
}

// SaveResults replaces the stored results and moves the scan timestamp
func (s *MemoryStorage) SaveResults(ctx context.Context, results []deal.SearchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.LastResults = append([]deal.SearchResult(nil), results...)
	s.doc.LastFullScan = s.now().UTC().Format(time.RFC3339)
	return nil
}

// GetDocument returns a copy of the whole document
func (s *MemoryStorage) GetDocument(ctx context.Context) (deal.StorageDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	doc.GroceryItems = append([]deal.GroceryItem(nil), s.doc.GroceryItems...)
	doc.LastResults = append([]deal.SearchResult(nil), s.doc.LastResults...)
	return doc, nil
}

// Close is a no-op
func (s *MemoryStorage) Close() error {
	return nil
}
