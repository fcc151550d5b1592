package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// ValkeyCounter implements Counter on a shared Valkey client. INCR provides
// the no-lost-updates guarantee under concurrent increments.
type ValkeyCounter struct {
	client valkey.Client
}

func NewValkeyCounter(client valkey.Client) *ValkeyCounter {
	return &ValkeyCounter{client: client}
}

// Incr increments the counter and, when this is the key's first increment,
// arms its expiry. A failed expiry after a successful increment is logged and
// tolerated: the counter may then outlive its day, which is preferred over
// rejecting the request or losing the increment.
func (c *ValkeyCounter) Incr(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	count, err := c.client.Do(ctx, c.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("incrementing counter: %w", err)
	}

	if count == 1 {
		expire := c.client.B().Expire().Key(key).Seconds(int64(expiry.Seconds())).Build()
		if err := c.client.Do(ctx, expire).Error(); err != nil {
			log.Warn().Err(err).Str("key", key).
				Msg("failed to set counter expiry; counter may persist past its window")
		}
	}

	return count, nil
}
