// Package scheduler drives the scan: for every tracked item it fans out
// across all stores, collects the extracted deals, narrows them to
// relevant ones and persists the result set. Store sweeps run
// concurrently; items within one store run strictly sequentially with a
// fixed delay so a single store never sees bursts.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dealwatch/groceryworker/internal/deal"
	"dealwatch/groceryworker/internal/extract"
	"dealwatch/groceryworker/internal/page"
	"dealwatch/groceryworker/internal/scrape"
	"dealwatch/groceryworker/internal/store"
	"dealwatch/groceryworker/logger"
	errs "dealwatch/groceryworker/pkg/errors"
	"dealwatch/groceryworker/pkg/retry"
	"dealwatch/groceryworker/services/cache"
	"dealwatch/groceryworker/services/storage"
)

// Options tunes one scheduler instance
type Options struct {
	// StoreDelay is the fixed wait between consecutive items of the same
	// store
	StoreDelay time.Duration
	// LoadTimeout bounds one page acquisition
	LoadTimeout time.Duration
	// MessageTimeout bounds one capability round-trip
	MessageTimeout time.Duration
	// RetryAttempts and RetryBackoff govern the message retry wrapper
	RetryAttempts int
	RetryBackoff  time.Duration
	// BlockTime is how long a store stays blocked after a rate-limit hit
	BlockTime time.Duration
}

// Scheduler orchestrates one full scan over all stores and items
type Scheduler struct {
	registry  *store.Registry
	fetcher   page.Fetcher
	extractor *extract.Extractor
	storage   storage.Storage
	cache     cache.CacheService
	opts      Options
	log       *logger.Logger
	now       func() time.Time

	// newClient binds the extraction capability to a loaded page;
	// replaceable in tests
	newClient func(html string, profile *store.Profile, timeout time.Duration) scrape.Client
}

// New creates a scheduler
func New(registry *store.Registry, fetcher page.Fetcher, extractor *extract.Extractor, st storage.Storage, cacheSvc cache.CacheService, opts Options) *Scheduler {
	s := &Scheduler{
		registry:  registry,
		fetcher:   fetcher,
		extractor: extractor,
		storage:   st,
		cache:     cacheSvc,
		opts:      opts,
		log:       logger.ForScheduler(),
		now:       time.Now,
	}
	s.newClient = func(html string, profile *store.Profile, timeout time.Duration) scrape.Client {
		return scrape.NewPageClient(html, profile, extractor, timeout)
	}
	return s
}

// Run performs one full scan and persists the result set. It always
// returns one SearchResult per item, in item order; degraded stores
// contribute nothing and only a whole-item failure sets the result error.
func (s *Scheduler) Run(ctx context.Context, items []deal.GroceryItem) []deal.SearchResult {
	profiles := s.registry.Profiles()

	// all store sweeps run concurrently; each sweep walks the items
	// sequentially and reports its deals positionally
	perStore := make(map[store.Key][][]deal.Deal, len(profiles))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, profile := range profiles {
		wg.Add(1)
		go func(p *store.Profile) {
			defer wg.Done()
			swept := s.sweepStore(ctx, p, items)
			mu.Lock()
			perStore[p.Key] = swept
			mu.Unlock()
		}(profile)
	}
	wg.Wait()

	results := make([]deal.SearchResult, 0, len(items))
	for i, item := range items {
		results = append(results, s.aggregate(item, i, profiles, perStore))
	}

	if err := s.storage.SaveResults(ctx, results); err != nil {
		s.log.WithError(err).Error().Msg("Failed to persist scan results")
	}
	return results
}

// sweepStore fetches every item against one store, in order, with the
// inter-request delay between consecutive items. A failed fetch leaves an
// empty slot and never stops the sweep.
func (s *Scheduler) sweepStore(ctx context.Context, profile *store.Profile, items []deal.GroceryItem) [][]deal.Deal {
	log := logger.ForStore(string(profile.Key))
	swept := make([][]deal.Deal, len(items))

	for i, item := range items {
		swept[i] = s.fetchStoreItem(ctx, profile, item, log)

		if i < len(items)-1 {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Sweep cancelled")
				return swept
			case <-time.After(s.opts.StoreDelay):
			}
		}
	}
	return swept
}

// fetchStoreItem runs the per-(store, item) pipeline: block check, page
// acquisition, capability round-trip with retries. All failures degrade
// to an empty contribution.
func (s *Scheduler) fetchStoreItem(ctx context.Context, profile *store.Profile, item deal.GroceryItem, log *logger.Logger) []deal.Deal {
	log = log.WithField("item", item.Name)

	if s.cache != nil {
		if _, err := s.cache.Get(blockKey(profile.Key)); err == nil {
			log.Warn().Str("stage", "block").Msg("Store is rate-limit blocked, skipping fetch")
			return nil
		}
	}

	searchURL := profile.SearchURL(item.SearchTerm)
	handle, err := s.fetcher.Open(ctx, searchURL)
	if err != nil {
		log.WithError(err).Warn().Str("stage", "open").Msg("Failed to open browsing context")
		return nil
	}
	defer handle.Close()

	html, err := handle.AwaitLoad(ctx, s.opts.LoadTimeout)
	if err != nil {
		if errs.IsType(err, errs.ErrorTypeRateLimit) && s.cache != nil {
			s.cache.Set(blockKey(profile.Key), []byte(fmt.Sprintf("%d", int(s.opts.BlockTime.Seconds()))), s.opts.BlockTime)
		}
		log.WithError(err).Warn().Str("stage", "load").Msg("Page load failed")
		return nil
	}

	client := s.newClient(html, profile, s.opts.MessageTimeout)
	deals, err := retry.Do(ctx, s.opts.RetryAttempts, s.opts.RetryBackoff, func(ctx context.Context) ([]deal.Deal, error) {
		if err := client.Ping(ctx); err != nil {
			return nil, err
		}
		return client.ScrapeDeals(ctx, profile.Key, item.SearchTerm)
	})
	if err != nil {
		log.WithError(err).Warn().Str("stage", "scrape").Msg("Extraction failed, contributing no deals")
		return nil
	}

	log.Debug().Str("stage", "scrape").Int("deals", len(deals)).Msg("Store contribution collected")
	return deals
}

// aggregate concatenates one item's deals across stores in registry
// order, dedupes, then filters for relevance. Dedupe runs first: the
// filter is title-based, so it removes the same duplicates either way,
// and deduping first keeps the "first occurrence wins" rule independent
// of the item's term set.
func (s *Scheduler) aggregate(item deal.GroceryItem, index int, profiles []*store.Profile, perStore map[store.Key][][]deal.Deal) (result deal.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.NewPipeline(fmt.Sprintf("aggregation failed for %q", item.SearchTerm), fmt.Errorf("%v", r))
			s.log.WithError(err).Error().Str("item", item.Name).Msg("Per-item pipeline failure")
			result.SearchTerm = item.SearchTerm
			result.Deals = []deal.Deal{}
			result.Error = err.Error()
		}
	}()

	result = deal.SearchResult{
		SearchTerm:  item.SearchTerm,
		Deals:       []deal.Deal{},
		LastChecked: s.now().UTC().Format(time.RFC3339),
	}

	var all []deal.Deal
	for _, profile := range profiles {
		swept := perStore[profile.Key]
		if index < len(swept) {
			all = append(all, swept[index]...)
		}
	}

	result.Deals = deal.FilterExactMatches(deal.Dedupe(all), item)
	return result
}

func blockKey(key store.Key) string {
	return string(key) + "_rate_limited"
}
