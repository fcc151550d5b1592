package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore errors on every operation, simulating an unavailable backend.
type failingStore[T any] struct{}

func (failingStore[T]) Get(context.Context, string) (T, bool, error) {
	var zero T
	return zero, false, errors.New("backend unavailable")
}

func (failingStore[T]) Set(context.Context, string, T) error {
	return errors.New("backend unavailable")
}

func (failingStore[T]) Invalidate(context.Context, string) error {
	return errors.New("backend unavailable")
}

func (failingStore[T]) Close() error { return nil }

func TestGetOrLoad_MissThenHit(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemory[string](time.Minute, 10)
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "loaded", nil
	}

	got, err := GetOrLoad(ctx, store, "key", loader, nil)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, loads)

	// second call served from cache, loader untouched
	got, err = GetOrLoad(ctx, store, "key", loader, nil)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, loads)
}

func TestGetOrLoad_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemory[string](time.Minute, 10)
	require.NoError(t, err)

	loadErr := errors.New("upstream down")
	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "", loadErr
	}

	_, err = GetOrLoad(ctx, store, "key", loader, nil)
	require.ErrorIs(t, err, loadErr)

	// the failure was not stored; the next call loads again
	_, err = GetOrLoad(ctx, store, "key", loader, nil)
	require.ErrorIs(t, err, loadErr)
	assert.Equal(t, 2, loads)
}

func TestGetOrLoad_PredicateRejectsCaching(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemory[string](time.Minute, 10)
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "not found", nil
	}
	cacheable := func(v string) bool { return v != "not found" }

	got, err := GetOrLoad(ctx, store, "key", loader, cacheable)
	require.NoError(t, err)
	assert.Equal(t, "not found", got)

	// rejected value was not stored; the loader runs again
	_, err = GetOrLoad(ctx, store, "key", loader, cacheable)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)

	_, found, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetOrLoad_PredicateAcceptsCaching(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemory[string](time.Minute, 10)
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "ok", nil
	}
	cacheable := func(v string) bool { return v == "ok" }

	_, err = GetOrLoad(ctx, store, "key", loader, cacheable)
	require.NoError(t, err)

	_, err = GetOrLoad(ctx, store, "key", loader, cacheable)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestGetOrLoad_StoreFailuresTolerated(t *testing.T) {
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (string, error) {
		loads++
		return "loaded", nil
	}

	// read and write both fail; the loader result still comes back
	got, err := GetOrLoad[string](ctx, failingStore[string]{}, "key", loader, nil)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, loads)
}
