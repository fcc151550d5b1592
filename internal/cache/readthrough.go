package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// GetOrLoad is the read-through path for a cache store. On a hit the cached
// value is returned and the loader is never invoked. On a miss the loader
// runs; a successful result is stored only when the caller's cacheable
// predicate accepts it (a nil predicate accepts everything). Loader failures
// are returned as-is and never stored.
//
// The store is non-locking: concurrent misses on the same key may each invoke
// the loader, and the last write wins. Loaders are idempotent reads, so the
// occasional duplicate load is preferred over a stampede lock.
//
// Cache read and write failures are logged and treated as misses: the loader
// result always takes precedence over cache availability.
func GetOrLoad[T any](
	ctx context.Context,
	store Store[T],
	key string,
	loader func(ctx context.Context) (T, error),
	cacheable func(T) bool,
) (T, error) {
	cached, found, err := store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, loading")
	} else if found {
		return cached, nil
	}

	value, err := loader(ctx)
	if err != nil {
		return value, err
	}

	if cacheable == nil || cacheable(value) {
		if err := store.Set(ctx, key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	return value, nil
}
