package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dealwatch/groceryworker/config"
	"dealwatch/groceryworker/internal/extract"
	"dealwatch/groceryworker/internal/page"
	"dealwatch/groceryworker/internal/scheduler"
	"dealwatch/groceryworker/internal/store"
	"dealwatch/groceryworker/logger"
	"dealwatch/groceryworker/services/cache"
	"dealwatch/groceryworker/services/storage"
	"dealwatch/groceryworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("fetcher", cfg.PageFetcher).
		Dur("scan_interval", cfg.ScanInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(&cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	registry, err := store.NewRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid store registry")
	}
	log.Info().
		Int("store_count", len(registry.Keys())).
		Msg("Store registry ready")

	sched := scheduler.New(registry, services.Fetcher, extract.New(), services.Storage, services.Cache, scheduler.Options{
		StoreDelay:     cfg.StoreDelay,
		LoadTimeout:    cfg.PageLoadTimeout,
		MessageTimeout: cfg.MessageTimeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBackoff:   cfg.RetryBackoff,
		BlockTime:      cfg.BlockTime,
	})

	// Create and start worker
	w := worker.NewWorker(ctx, sched, services.Storage, cfg.ScanInterval)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting grocery deal worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache   cache.CacheService
	Storage storage.Storage
	Fetcher page.Fetcher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Fetcher != nil {
		s.Fetcher.Close()
	}
	if s.Storage != nil {
		s.Storage.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if cacheService == nil {
		return nil, fmt.Errorf("failed to create cache service")
	}
	services.Cache = cacheService

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize document storage
	redisStorage := storage.NewRedisStorage(cfg.RedisAddr, cfg.RedisDB, cfg.StorageKey)
	if redisStorage == nil {
		return nil, fmt.Errorf("failed to create redis storage")
	}
	services.Storage = redisStorage

	logger.Info("Connected to Redis at %s (DB: %d, Key: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.StorageKey)

	// Initialize the page fetcher
	switch cfg.PageFetcher {
	case "browser":
		fetcher, err := page.NewBrowserFetcher(cfg.StabilizeWait)
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser fetcher: %w", err)
		}
		services.Fetcher = fetcher
	case "http":
		services.Fetcher = page.NewHTTPFetcher()
	}

	return services, nil
}
