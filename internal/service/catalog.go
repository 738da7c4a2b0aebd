package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/stock"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/cache"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/database"
)

// CatalogService manages inventory item definitions. The catalog is
// read-mostly and served through the cache; stock quantities never are.
type CatalogService struct {
	store database.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCatalogService creates a new catalog service. cache may be nil to
// disable caching.
func NewCatalogService(store database.Store, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: store, cache: c, ttl: ttl}
}

// Create adds a catalog item and invalidates the tenant's list cache.
func (s *CatalogService) Create(ctx context.Context, req stock.ItemCreateRequest) (*stock.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	it := &stock.Item{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Category:       req.Category,
		UnitPriceCents: req.UnitPriceCents,
		Supplier:       req.Supplier,
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx, it.ID)
	return it, nil
}

// Get returns one catalog item, cache-first.
func (s *CatalogService) Get(ctx context.Context, id string) (*stock.Item, error) {
	key := s.itemKey(ctx, id)
	if s.cache != nil {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			var it stock.Item
			if err := json.Unmarshal(data, &it); err == nil {
				return &it, nil
			}
		}
	}

	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, it)
	return it, nil
}

// List returns the tenant's catalog, cache-first.
func (s *CatalogService) List(ctx context.Context) ([]stock.Item, error) {
	key := s.listKey(ctx)
	if s.cache != nil {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			var items []stock.Item
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, items)
	return items, nil
}

// Update edits a catalog item and invalidates its cache entries.
func (s *CatalogService) Update(ctx context.Context, id string, req stock.ItemCreateRequest) (*stock.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Name = req.Name
	it.Category = req.Category
	it.UnitPriceCents = req.UnitPriceCents
	it.Supplier = req.Supplier

	if err := s.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return it, nil
}

func (s *CatalogService) itemKey(ctx context.Context, id string) string {
	return "catalog:" + middleware.TenantIDFromContext(ctx) + ":item:" + id
}

func (s *CatalogService) listKey(ctx context.Context) string {
	return "catalog:" + middleware.TenantIDFromContext(ctx) + ":list"
}

func (s *CatalogService) put(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Debug("catalog cache set failed", "key", key, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, s.itemKey(ctx, id))
	_ = s.cache.Delete(ctx, s.listKey(ctx))
}
