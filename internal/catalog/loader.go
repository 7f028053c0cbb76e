package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher provides the four raw feeds the loader merges. upstream.Client
// satisfies it; tests substitute a stub.
type Fetcher interface {
	Store(ctx context.Context) (map[string]any, error)
	Accessories(ctx context.Context) (any, error)
	NewPhones(ctx context.Context) (any, error)
	Sold(ctx context.Context) (any, error)
}

// Catalog is the merged, normalized result of one load cycle.
type Catalog struct {
	Store            StoreInfo   `json:"store"`
	Used             []PhoneItem `json:"used"`
	New              []PhoneItem `json:"new"`
	Accessories      []PhoneItem `json:"accessories"`
	AccessoriesCount int         `json:"accessoriesCount"`
}

// Items returns the merged used+new+accessory list. IDs are unique across
// the merge because each normalizer prefixes its source.
func (c *Catalog) Items() []PhoneItem {
	out := make([]PhoneItem, 0, len(c.Used)+len(c.New)+len(c.Accessories))
	out = append(out, c.Used...)
	out = append(out, c.New...)
	out = append(out, c.Accessories...)
	return out
}

// FindItem scans the merged list for an id. Returns nil when absent.
func (c *Catalog) FindItem(id string) *PhoneItem {
	for _, list := range [][]PhoneItem{c.Used, c.New, c.Accessories} {
		for i := range list {
			if list[i].ID == id {
				return &list[i]
			}
		}
	}
	return nil
}

// Loader orchestrates the parallel feed fetches and runs the normalizers
// and reconciler in fixed order. With a non-zero TTL it caches the merged
// result and serves stale data when a refresh fails.
type Loader struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger

	mu        sync.RWMutex
	cached    *Catalog
	lastFetch time.Time
}

// NewLoader creates a Loader. ttl == 0 disables caching; every Load then
// hits the upstream feeds.
func NewLoader(f Fetcher, ttl time.Duration, logger *slog.Logger) *Loader {
	return &Loader{fetcher: f, ttl: ttl, logger: logger}
}

// Load returns the catalog, fetching all four feeds concurrently. The
// store, new-phone, and sold feeds must all succeed; the accessories feed
// degrades to an empty list on failure rather than blocking the page.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if l.ttl > 0 {
		l.mu.RLock()
		if l.cached != nil && time.Since(l.lastFetch) < l.ttl {
			c := l.cached
			l.mu.RUnlock()
			return c, nil
		}
		l.mu.RUnlock()
	}

	cat, err := l.fetch(ctx)
	if err != nil {
		l.mu.RLock()
		stale := l.cached
		l.mu.RUnlock()
		if l.ttl > 0 && stale != nil {
			l.logger.Warn("catalog refresh failed, serving stale data", "error", err)
			return stale, nil
		}
		return nil, err
	}

	if l.ttl > 0 {
		l.mu.Lock()
		l.cached = cat
		l.lastFetch = time.Now()
		l.mu.Unlock()
	}
	return cat, nil
}

func (l *Loader) fetch(ctx context.Context) (*Catalog, error) {
	var (
		storeData map[string]any
		oiData    any
		npData    any
		soldData  any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		storeData, err = l.fetcher.Store(gctx)
		return err
	})
	g.Go(func() error {
		data, err := l.fetcher.Accessories(gctx)
		if err != nil {
			// Accessories render empty instead of failing the load.
			l.logger.Warn("accessories feed unavailable", "error", err)
			return nil
		}
		oiData = data
		return nil
	})
	g.Go(func() error {
		var err error
		npData, err = l.fetcher.NewPhones(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		soldData, err = l.fetcher.Sold(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NormalizeStoreInfo(storeData)

	usedRaw := asSlice(storeData["used_phones"])
	if len(usedRaw) == 0 {
		usedRaw = asSlice(asMap(oiData)["used_phones"])
	}
	used := NormalizeUsedPhones(usedRaw)
	newPhones := NormalizeNewPhones(npData)
	accessories := NormalizeAccessories(oiData)

	used = ApplySoldStatus(used, ParseSoldFeed(soldData))

	count := len(accessories)
	if len(accessories) == 0 {
		accessories = AccessoryFallback(used, store.Categories)
		count = len(accessories)
	}

	if newPhones == nil {
		newPhones = []PhoneItem{}
	}

	return &Catalog{
		Store:            store,
		Used:             used,
		New:              newPhones,
		Accessories:      accessories,
		AccessoriesCount: count,
	}, nil
}
