// Package backendtest checks that a persistence.Backend behaves like the others.
package backendtest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"investigation-canvas/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the Backend contract against a fresh backend
func Run(t *testing.T, open func(t *testing.T) persistence.Backend) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		b := open(t)
		_, err := b.Get(ctx, "canvas_none")
		assert.True(t, errors.Is(err, persistence.ErrNotFound))
	})

	t.Run("put then get", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Put(ctx, "canvas_a", []byte(`{"v":1}`)))
		got, err := b.Get(ctx, "canvas_a")
		require.NoError(t, err)
		assert.Equal(t, `{"v":1}`, string(got))
	})

	t.Run("put overwrites", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Put(ctx, "canvas_a", []byte("one")))
		require.NoError(t, b.Put(ctx, "canvas_a", []byte("two")))
		got, err := b.Get(ctx, "canvas_a")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Put(ctx, "canvas_a", []byte("x")))
		require.NoError(t, b.Delete(ctx, "canvas_a"))
		_, err := b.Get(ctx, "canvas_a")
		assert.True(t, errors.Is(err, persistence.ErrNotFound))
		assert.NoError(t, b.Delete(ctx, "canvas_a"), "deleting a missing key is not an error")
	})

	t.Run("keys by prefix", func(t *testing.T) {
		b := open(t)
		for _, key := range []string{"canvas_b", "other_x", "canvas_a", "canvas_inv/1 2"} {
			require.NoError(t, b.Put(ctx, key, []byte("x")))
		}
		keys, err := b.Keys(ctx, "canvas_")
		require.NoError(t, err)
		assert.Equal(t, []string{"canvas_a", "canvas_b", "canvas_inv/1 2"}, keys)
	})

	t.Run("concurrent puts to one key", func(t *testing.T) {
		b := open(t)
		large := bytes.Repeat([]byte("L"), 64<<10)
		small := []byte("small")

		const writers = 16
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			value := small
			if i%2 == 0 {
				value = large
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- b.Put(ctx, "canvas_a", value)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := b.Get(ctx, "canvas_a")
		require.NoError(t, err)
		assert.True(t, bytes.Equal(got, large) || bytes.Equal(got, small), "value is one complete write, got %d bytes", len(got))

		keys, err := b.Keys(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"canvas_a"}, keys)
	})
}
