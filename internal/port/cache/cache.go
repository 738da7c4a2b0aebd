// Package cache defines the port interface for caching.
//
// Only the read-mostly item catalog is ever cached. Quantities and
// assignment status are never cached: every such decision reads the
// persisted state at decision time.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
