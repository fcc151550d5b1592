package cache

import (
	"context"
	"time"
)

// Namespace TTLs for the upstream data kinds. These follow the provider's
// published freshness guidance: life indices change twice a day, hourly
// forecasts roughly every half hour, observations every ten minutes.
const (
	TTLRealtime = 10 * time.Minute
	TTLHourly   = 30 * time.Minute
	TTLDaily    = time.Hour
	TTLIndices  = 6 * time.Hour
	TTLDefault  = time.Hour

	// TTLToken is the credential validity (24h) minus a safety margin, so a
	// cached credential always expires before the upstream would reject it.
	TTLToken = 24*time.Hour - 30*time.Minute
)

// Store defines the interface for cache implementations. The generic type T
// represents the value type being cached.
type Store[T any] interface {
	// Get retrieves a value from the cache.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores a value in the cache under the store's TTL.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes a value from the cache.
	Invalidate(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
