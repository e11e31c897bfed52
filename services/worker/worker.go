package worker

import (
	"context"
	"os"
	"time"

	"dealwatch/groceryworker/internal/deal"
	"dealwatch/groceryworker/logger"
	"dealwatch/groceryworker/services/storage"
)

// Scanner runs one full scan over the tracked items
type Scanner interface {
	Run(ctx context.Context, items []deal.GroceryItem) []deal.SearchResult
}

// Worker drives the periodic scan loop: load the tracked items, hand them
// to the scanner, sleep, repeat
type Worker struct {
	ctx          context.Context
	scanner      Scanner
	storage      storage.Storage
	scanInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	scanner Scanner,
	st storage.Storage,
	scanInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:          ctx,
		scanner:      scanner,
		storage:      st,
		scanInterval: scanInterval,
		log:          logger.ForWorker(),
	}
}

// Start runs the scan loop until the context is cancelled
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.runScan()
		elapsed := time.Since(start)
		if os.Getenv("GROCERY_ENVIRONMENT") != "production" {
			w.log.Info().Dur("elapsed", elapsed).Msg("Scan finished")
		}

		select {
		case <-w.ctx.Done():
			return nil
		case <-time.After(w.scanInterval):
		}
	}
}

// runScan performs a single scan pass over all tracked items
func (w *Worker) runScan() {
	items, err := w.storage.GetItems(w.ctx)
	if err != nil {
		w.log.WithError(err).Error().Msg("Failed to load tracked items")
		return
	}
	if len(items) == 0 {
		w.log.Debug().Msg("No tracked items, skipping scan")
		return
	}

	results := w.scanner.Run(w.ctx, items)

	dealCount := 0
	failures := 0
	for _, res := range results {
		dealCount += len(res.Deals)
		if res.Error != "" {
			failures++
		}
	}
	w.log.Info().
		Int("items", len(items)).
		Int("deals", dealCount).
		Int("failures", failures).
		Msg("Scan results collected")
}
