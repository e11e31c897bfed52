package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dealwatch/groceryworker/internal/deal"
	errs "dealwatch/groceryworker/pkg/errors"
)

// RedisStorage keeps the grocery document as one JSON value under a
// single key. Every mutation is read-then-write without cross-operation
// locking.
type RedisStorage struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisStorage connects to Redis and binds the document key
func NewRedisStorage(addr string, db int, key string) *RedisStorage {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStorage{client: client, key: key, now: time.Now}
}

// GetDocument loads the whole document; an absent key yields an empty one
func (s *RedisStorage) GetDocument(ctx context.Context) (deal.StorageDocument, error) {
	doc := emptyDocument()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return doc, nil
	}
	if err != nil {
		return doc, errs.NewStorage("failed to load document", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errs.NewStorage("failed to decode document", err)
	}
	return doc, nil
}

func (s *RedisStorage) saveDocument(ctx context.Context, doc deal.StorageDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errs.NewStorage("failed to encode document", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errs.NewStorage("failed to write document", err)
	}
	return nil
}

// GetItems returns all tracked grocery items
func (s *RedisStorage) GetItems(ctx context.Context) ([]deal.GroceryItem, error) {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.GroceryItems, nil
}

// AddItem creates a tracked item with a generated id and timestamp
func (s *RedisStorage) AddItem(ctx context.Context, name, searchTerm string) (deal.GroceryItem, error) {
	now := s.now()
	item := deal.GroceryItem{
		ID:         strconv.FormatInt(now.UnixMilli(), 10),
		Name:       name,
		SearchTerm: searchTerm,
		DateAdded:  now.UTC().Format(time.RFC3339),
	}
	if item.SearchTerm == "" {
		item.SearchTerm = strings.ToLower(name)
	}

	doc, err := s.GetDocument(ctx)
	if err != nil {
		return deal.GroceryItem{}, err
	}
	doc.GroceryItems = append(doc.GroceryItems, item)
	if err := s.saveDocument(ctx, doc); err != nil {
		return deal.GroceryItem{}, err
	}
	return item, nil
}

// RemoveItem deletes a tracked item by id
func (s *RedisStorage) RemoveItem(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return err
	}
	kept := doc.GroceryItems[:0]
	for _, item := range doc.GroceryItems {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	doc.GroceryItems = kept
	return s.saveDocument(ctx, doc)
}

// UpdateItem replaces the stored item with the same id
func (s *RedisStorage) UpdateItem(ctx context.Context, item deal.GroceryItem) error {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return err
	}
	for i := range doc.GroceryItems {
		if doc.GroceryItems[i].ID == item.ID {
			doc.GroceryItems[i] = item
			return s.saveDocument(ctx, doc)
		}
	}
	return errs.NewStorage("no item with id "+item.ID, nil)
}

// GetLastResults returns the results of the most recent scan
func (s *RedisStorage) GetLastResults(ctx context.Context) ([]deal.SearchResult, error) {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.LastResults, nil
}

// SaveResults replaces the stored results and moves the scan timestamp
func (s *RedisStorage) SaveResults(ctx context.Context, results []deal.SearchResult) error {
	doc, err := s.GetDocument(ctx)
	if err != nil {
		return err
	}
	doc.LastResults = results
	doc.LastFullScan = s.now().UTC().Format(time.RFC3339)
	return s.saveDocument(ctx, doc)
}

// Close closes the Redis connection
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func emptyDocument() deal.StorageDocument {
	return deal.StorageDocument{
		GroceryItems: []deal.GroceryItem{},
		LastResults:  []deal.SearchResult{},
	}
}
