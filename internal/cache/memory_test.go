package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheTestDummy struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestMemory_GetMiss(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemory[cacheTestDummy](time.Minute, 10)
	require.NoError(t, err)

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemory[cacheTestDummy](time.Minute, 10)
	require.NoError(t, err)

	want := cacheTestDummy{Name: "realtime", Value: 42}
	require.NoError(t, c.Set(ctx, "weather:now:101010100", want))

	got, found, err := c.Get(ctx, "weather:now:101010100")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemory[cacheTestDummy](time.Minute, 10)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key", cacheTestDummy{Name: "stale"}))
	require.NoError(t, c.Invalidate(ctx, "key"))

	_, found, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemory[cacheTestDummy](100*time.Millisecond, 10)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key", cacheTestDummy{Name: "transient"}))

	_, found, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)

	time.Sleep(150 * time.Millisecond)

	_, found, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_KeysIndependent(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemory[cacheTestDummy](time.Minute, 10)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", cacheTestDummy{Value: 1}))
	require.NoError(t, c.Set(ctx, "b", cacheTestDummy{Value: 2}))
	require.NoError(t, c.Invalidate(ctx, "a"))

	got, found, err := c.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, got.Value)
}
