package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/climabridge/climabridge/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// Backend owns the resources shared by every cache namespace: for the valkey
// type, a single client connection; for the memory type, nothing. Individual
// stores with per-namespace TTLs are created from it with NewStore.
type Backend struct {
	cacheType string
	valkey    valkey.Client
}

// NewBackend creates the cache backend selected by the configuration.
// The cache type must be either "memory" or "valkey".
func NewBackend(ctx context.Context, cacheConfig config.CacheConfig) (*Backend, error) {
	switch cacheConfig.Type {
	case "valkey":
		log.Info().
			Str("cache_type", "valkey").
			Str("address", cacheConfig.Valkey.Address).
			Bool("tls", cacheConfig.Valkey.TLS).
			Msg("initializing distributed cache")

		if cacheConfig.Valkey.Address == "" {
			return nil, fmt.Errorf("valkey address is required when cache type is valkey")
		}

		valkeyOpts := valkey.ClientOption{
			InitAddress: []string{cacheConfig.Valkey.Address},
			Username:    cacheConfig.Valkey.Username,
			Password:    cacheConfig.Valkey.Password,
		}

		if cacheConfig.Valkey.TLS {
			valkeyOpts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		valkeyClient, err := valkey.NewClient(valkeyOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}

		return &Backend{cacheType: "valkey", valkey: valkeyClient}, nil

	case "memory":
		log.Info().Str("cache_type", "memory").Msg("initializing in-memory cache")
		return &Backend{cacheType: "memory"}, nil

	default:
		return nil, fmt.Errorf("unknown cache type %q (expected \"memory\" or \"valkey\")", cacheConfig.Type)
	}
}

// Valkey returns the shared valkey client, or nil for the memory backend.
// The rate limiter uses this to share the backend's connection.
func (b *Backend) Valkey() valkey.Client {
	return b.valkey
}

// Close releases the backend's shared resources.
func (b *Backend) Close() {
	if b.valkey != nil {
		b.valkey.Close()
	}
}

// NewStore creates a cache store for one namespace, with that namespace's
// TTL. For the memory backend maxSize bounds the entry count; the valkey
// backend delegates memory policy to the server.
func NewStore[T any](b *Backend, ttl time.Duration, maxSize int) (Store[T], error) {
	if b.cacheType == "valkey" {
		return NewDistributed[T](b.valkey, ttl)
	}
	return NewMemory[T](ttl, maxSize)
}
