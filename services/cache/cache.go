package cache

import (
	"time"
)

// CacheService is a small TTL cache. The scheduler uses it to hold
// per-store rate-limit blocks: while a block key exists, that store is not
// fetched at all.
type CacheService interface {
	// Get retrieves a value; a miss returns an error
	Get(key string) ([]byte, error)

	// Set stores a value with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value
	Delete(key string) error
}
