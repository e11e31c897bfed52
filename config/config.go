package config

import (
	"os"
	"strconv"
	"time"

	errs "dealwatch/groceryworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis document storage
	RedisAddr  string
	RedisDB    int
	StorageKey string

	// Memcache rate-limit block store
	MemcacheAddr string

	// Scan scheduling
	ScanInterval time.Duration
	// StoreDelay is the fixed wait between consecutive items of the same
	// store, to avoid tripping rate limits
	StoreDelay time.Duration

	// Page acquisition
	PageFetcher     string // "browser" or "http"
	PageLoadTimeout time.Duration
	StabilizeWait   time.Duration

	// Extraction capability messaging
	MessageTimeout time.Duration
	RetryAttempts  int
	RetryBackoff   time.Duration

	// BlockTime is how long a store stays blocked after a rate-limit hit
	BlockTime time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	scanInterval, _ := strconv.Atoi(getEnv("SCAN_INTERVAL_SECONDS", "3600"))
	storeDelay, _ := strconv.Atoi(getEnv("STORE_DELAY_MS", "1300"))
	loadTimeout, _ := strconv.Atoi(getEnv("PAGE_LOAD_TIMEOUT_SECONDS", "15"))
	stabilizeWait, _ := strconv.Atoi(getEnv("STABILIZE_WAIT_MS", "2000"))
	messageTimeout, _ := strconv.Atoi(getEnv("MESSAGE_TIMEOUT_SECONDS", "10"))
	retryAttempts, _ := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	retryBackoff, _ := strconv.Atoi(getEnv("RETRY_BACKOFF_MS", "1000"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))

	return Config{
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         redisDB,
		StorageKey:      getEnv("REDIS_STORAGE_KEY", "grocery_deals"),
		MemcacheAddr:    getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ScanInterval:    time.Duration(scanInterval) * time.Second,
		StoreDelay:      time.Duration(storeDelay) * time.Millisecond,
		PageFetcher:     getEnv("PAGE_FETCHER", "browser"),
		PageLoadTimeout: time.Duration(loadTimeout) * time.Second,
		StabilizeWait:   time.Duration(stabilizeWait) * time.Millisecond,
		MessageTimeout:  time.Duration(messageTimeout) * time.Second,
		RetryAttempts:   retryAttempts,
		RetryBackoff:    time.Duration(retryBackoff) * time.Millisecond,
		BlockTime:       time.Duration(blockTime) * time.Second,
		Environment:     getEnv("GROCERY_ENVIRONMENT", "development"),
	}
}

// Validate checks that the loaded configuration is usable
func (c *Config) Validate() error {
	if c.PageFetcher != "browser" && c.PageFetcher != "http" {
		return errs.NewConfiguration("PAGE_FETCHER must be \"browser\" or \"http\", got "+c.PageFetcher, nil)
	}
	if c.RetryAttempts < 1 {
		return errs.NewConfiguration("RETRY_ATTEMPTS must be at least 1", nil)
	}
	if c.ScanInterval <= 0 {
		return errs.NewConfiguration("SCAN_INTERVAL_SECONDS must be positive", nil)
	}
	if c.PageLoadTimeout <= 0 {
		return errs.NewConfiguration("PAGE_LOAD_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.StoreDelay < 0 {
		return errs.NewConfiguration("STORE_DELAY_MS must not be negative", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
