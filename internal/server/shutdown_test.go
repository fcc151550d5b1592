package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHooks_AddContext(t *testing.T) {
	t.Run("adds hook successfully", func(t *testing.T) {
		var hooks ShutdownHooks

		hooks.AddContext("test", func(context.Context) error { return nil })

		require.Len(t, hooks.hooks, 1)
		assert.Equal(t, "test", hooks.hooks[0].name)
	})

	t.Run("ignores nil hook", func(t *testing.T) {
		var hooks ShutdownHooks

		hooks.AddContext("nil-hook", nil)

		assert.Empty(t, hooks.hooks)
	})

	t.Run("adds multiple hooks in order", func(t *testing.T) {
		var hooks ShutdownHooks

		hooks.AddContext("first", func(context.Context) error { return nil })
		hooks.AddContext("second", func(context.Context) error { return nil })

		require.Len(t, hooks.hooks, 2)
		assert.Equal(t, "first", hooks.hooks[0].name)
		assert.Equal(t, "second", hooks.hooks[1].name)
	})
}

func TestShutdownHooks_Add(t *testing.T) {
	t.Run("wraps contextless hook", func(t *testing.T) {
		var hooks ShutdownHooks

		called := false
		hooks.Add("test", func() error {
			called = true
			return nil
		})

		require.Len(t, hooks.hooks, 1)
		require.NoError(t, hooks.hooks[0].fn(context.Background()))
		assert.True(t, called)
	})

	t.Run("ignores nil hook", func(t *testing.T) {
		var hooks ShutdownHooks

		hooks.Add("nil-hook", nil)

		assert.Empty(t, hooks.hooks)
	})
}

type testCloser struct {
	closed bool
}

func (c *testCloser) Close() {
	c.closed = true
}

func TestShutdownHooks_AddClose(t *testing.T) {
	var hooks ShutdownHooks

	closer := &testCloser{}
	hooks.AddClose("closer", closer)

	require.Len(t, hooks.hooks, 1)
	require.NoError(t, hooks.hooks[0].fn(context.Background()))
	assert.True(t, closer.closed)
}

func TestShutdownHooks_Execute(t *testing.T) {
	t.Run("runs hooks in registration order", func(t *testing.T) {
		var hooks ShutdownHooks

		var order []string
		hooks.AddContext("first", func(context.Context) error {
			order = append(order, "first")
			return nil
		})
		hooks.AddContext("second", func(context.Context) error {
			order = append(order, "second")
			return nil
		})

		hooks.Execute(context.Background())

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("continues past a failing hook", func(t *testing.T) {
		var hooks ShutdownHooks

		var order []string
		hooks.AddContext("failing", func(context.Context) error {
			order = append(order, "failing")
			return errors.New("hook failure")
		})
		hooks.AddContext("after", func(context.Context) error {
			order = append(order, "after")
			return nil
		})

		hooks.Execute(context.Background())

		assert.Equal(t, []string{"failing", "after"}, order)
	})

	t.Run("no hooks is a no-op", func(t *testing.T) {
		var hooks ShutdownHooks

		assert.NotPanics(t, func() {
			hooks.Execute(context.Background())
		})
	})
}
