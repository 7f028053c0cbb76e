package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type stubFetcher struct {
	store       map[string]any
	accessories any
	newPhones   any
	sold        any

	storeErr       error
	accessoriesErr error
	newPhonesErr   error
	soldErr        error

	calls int
}

func (f *stubFetcher) Store(ctx context.Context) (map[string]any, error) {
	f.calls++
	return f.store, f.storeErr
}

func (f *stubFetcher) Accessories(ctx context.Context) (any, error) {
	return f.accessories, f.accessoriesErr
}

func (f *stubFetcher) NewPhones(ctx context.Context) (any, error) {
	return f.newPhones, f.newPhonesErr
}

func (f *stubFetcher) Sold(ctx context.Context) (any, error) {
	return f.sold, f.soldErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFetcher() *stubFetcher {
	return &stubFetcher{
		store: map[string]any{
			"ShopName": "Mobiles24",
			"categories": []any{
				map[string]any{"id": float64(3), "Name": "Accessories"},
			},
			"used_phones": []any{
				map[string]any{"id": float64(1), "Company": "Samsung", "Model": "Galaxy S21", "Variant": "128GB"},
				map[string]any{"id": float64(2), "Company": "Apple", "Model": "iPhone 13", "Variant": "256GB"},
			},
		},
		accessories: map[string]any{"items": []any{
			map[string]any{"id": float64(5), "Name": "Clear Case"},
		}},
		newPhones: []any{
			map[string]any{
				"id": float64(9), "Company": "Apple", "Model": "iPhone 15",
				"variant": []any{
					map[string]any{"id": float64(1), "Storage": "128GB", "SalePrice": "69999"},
				},
			},
		},
		sold: []any{
			map[string]any{"id": float64(1), "SoldDate": "2026-08-01"},
		},
	}
}

func TestLoaderMergesFeeds(t *testing.T) {
	loader := NewLoader(testFetcher(), 0, discardLogger())

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cat.Store.Name != "Mobiles24" {
		t.Errorf("store name = %q", cat.Store.Name)
	}
	if len(cat.Used) != 2 {
		t.Fatalf("used = %d, want 2", len(cat.Used))
	}
	if len(cat.New) != 1 {
		t.Fatalf("new = %d, want 1", len(cat.New))
	}
	if len(cat.Accessories) != 1 || cat.AccessoriesCount != 1 {
		t.Fatalf("accessories = %d count %d, want 1/1", len(cat.Accessories), cat.AccessoriesCount)
	}

	// Sold reconciliation ran over the used list
	if !cat.Used[0].IsSold || cat.Used[0].SoldOn != "2026-08-01" {
		t.Errorf("used-1 = %+v, want sold", cat.Used[0])
	}
	if cat.Used[1].IsSold {
		t.Error("used-2 should remain available")
	}

	// Merged item ids are unique across sources
	seen := make(map[string]bool)
	for _, it := range cat.Items() {
		if seen[it.ID] {
			t.Errorf("duplicate id %q in merged list", it.ID)
		}
		seen[it.ID] = true
	}

	if got := cat.FindItem("new-9-1"); got == nil || got.Model != "iPhone 15" {
		t.Errorf("FindItem(new-9-1) = %v", got)
	}
	if got := cat.FindItem("missing"); got != nil {
		t.Errorf("FindItem(missing) = %v, want nil", got)
	}
}

func TestLoaderAccessoriesFeedDegrades(t *testing.T) {
	f := testFetcher()
	f.accessories = nil
	f.accessoriesErr = errors.New("403 Forbidden")
	// Make one used phone accessory-categorized so the fallback kicks in
	f.store["used_phones"] = []any{
		map[string]any{"id": float64(1), "Company": "Samsung", "Model": "Galaxy S21", "CategoryID": float64(3)},
		map[string]any{"id": float64(2), "Company": "Apple", "Model": "iPhone 13", "CategoryID": float64(7)},
	}

	loader := NewLoader(f, 0, discardLogger())

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("accessories failure must not fail the load: %v", err)
	}
	if len(cat.Accessories) != 1 || cat.Accessories[0].ID != "used-1" {
		t.Errorf("accessories = %+v, want the used fallback", cat.Accessories)
	}
	if cat.AccessoriesCount != 1 {
		t.Errorf("count = %d, want 1", cat.AccessoriesCount)
	}
}

func TestLoaderStoreFeedFailureIsFatal(t *testing.T) {
	f := testFetcher()
	f.storeErr = errors.New("connection refused")

	loader := NewLoader(f, 0, discardLogger())

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("store feed failure should fail the load")
	}
}

func TestLoaderUsedPhonesFromAccessoriesPayload(t *testing.T) {
	f := testFetcher()
	delete(f.store, "used_phones")
	f.accessories = map[string]any{
		"items": []any{},
		"used_phones": []any{
			map[string]any{"id": float64(3), "Company": "Google", "Model": "Pixel 8"},
		},
	}

	loader := NewLoader(f, 0, discardLogger())

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Used) != 1 || cat.Used[0].ID != "used-3" {
		t.Errorf("used = %+v, want the secondary payload's phones", cat.Used)
	}
}

func TestLoaderCaching(t *testing.T) {
	f := testFetcher()
	loader := NewLoader(f, time.Minute, discardLogger())

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if f.calls != 1 {
		t.Errorf("store fetched %d times, want 1 (cached)", f.calls)
	}
}

func TestLoaderNoCacheWhenTTLZero(t *testing.T) {
	f := testFetcher()
	loader := NewLoader(f, 0, discardLogger())

	loader.Load(context.Background())
	loader.Load(context.Background())

	if f.calls != 2 {
		t.Errorf("store fetched %d times, want 2 (uncached)", f.calls)
	}
}

func TestLoaderServesStaleOnError(t *testing.T) {
	f := testFetcher()
	loader := NewLoader(f, time.Nanosecond, discardLogger())

	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	time.Sleep(time.Millisecond)
	f.storeErr = errors.New("upstream down")

	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("expected stale data, got error: %v", err)
	}
	if second != first {
		t.Error("expected the cached catalog to be served")
	}
}
