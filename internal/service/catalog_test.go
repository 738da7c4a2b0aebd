package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/cache"
)

// memCache is a trivial map-backed cache for tests. TTLs are ignored.
type memCache struct {
	data map[string][]byte
}

var _ cache.Cache = (*memCache)(nil)

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func TestCatalogCreateAndGet(t *testing.T) {
	store := &mockStore{}
	svc := NewCatalogService(store, newMemCache(), time.Minute)
	ctx := testCtx("t1")

	it, err := svc.Create(ctx, stock.ItemCreateRequest{Name: "Brake pads", Category: "brakes", UnitPriceCents: 2500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Brake pads" || got.UnitPriceCents != 2500 {
		t.Fatalf("unexpected item: %+v", got)
	}

	if _, err := svc.Create(ctx, stock.ItemCreateRequest{UnitPriceCents: 10}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, stock.ItemCreateRequest{Name: "X", UnitPriceCents: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for negative price, got %v", err)
	}
}

func TestCatalogGetServesFromCache(t *testing.T) {
	store := &mockStore{}
	svc := NewCatalogService(store, newMemCache(), time.Minute)
	ctx := testCtx("t1")

	it, err := svc.Create(ctx, stock.ItemCreateRequest{Name: "Oil filter", UnitPriceCents: 800})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, it.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	// Mutate the store behind the cache: the stale cached copy wins
	// until the TTL or an invalidating write.
	store.items[0].Name = "changed underneath"
	got, err := svc.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Oil filter" {
		t.Fatalf("expected the cached copy, got %+v", got)
	}
}

func TestCatalogUpdateInvalidatesCache(t *testing.T) {
	store := &mockStore{}
	svc := NewCatalogService(store, newMemCache(), time.Minute)
	ctx := testCtx("t1")

	it, err := svc.Create(ctx, stock.ItemCreateRequest{Name: "Oil filter", UnitPriceCents: 800})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, it.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if _, err := svc.Update(ctx, it.ID, stock.ItemCreateRequest{Name: "Oil filter XL", UnitPriceCents: 900}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Oil filter XL" || got.UnitPriceCents != 900 {
		t.Fatalf("expected the updated item, got %+v", got)
	}
}

func TestCatalogListCachePerTenant(t *testing.T) {
	store := &mockStore{items: []stock.Item{{ID: "i1", Name: "Wipers", UnitPriceCents: 500}}}
	c := newMemCache()
	svc := NewCatalogService(store, c, time.Minute)

	if _, err := svc.List(testCtx("t1")); err != nil {
		t.Fatalf("list t1: %v", err)
	}
	if _, err := svc.List(testCtx("t2")); err != nil {
		t.Fatalf("list t2: %v", err)
	}
	if _, ok := c.data["catalog:t1:list"]; !ok {
		t.Error("expected a t1 list cache entry")
	}
	if _, ok := c.data["catalog:t2:list"]; !ok {
		t.Error("expected a t2 list cache entry")
	}
}

func TestCatalogNilCache(t *testing.T) {
	store := &mockStore{}
	svc := NewCatalogService(store, nil, 0)
	ctx := testCtx("t1")

	it, err := svc.Create(ctx, stock.ItemCreateRequest{Name: "Coolant", UnitPriceCents: 1200})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, it.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
}
