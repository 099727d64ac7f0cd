// Package storagetest общий набор проверок для реализаций kv.Driver.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natively/internal/domain/kv"
)

// Run прогоняет контракт kv.Driver на свежем экземпляре из newDriver
func Run(t *testing.T, newDriver func(t *testing.T) kv.Driver) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		d := newDriver(t)
		_, err := d.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		require.NoError(t, d.Set(ctx, kv.KeyStoreLocations, []byte(`[{"id":"s1"}]`)))

		got, err := d.Get(ctx, kv.KeyStoreLocations)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"s1"}]`, string(got))
	})

	t.Run("set overwrites whole value", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		require.NoError(t, d.Set(ctx, "k", []byte(`{"a":1,"b":2}`)))
		require.NoError(t, d.Set(ctx, "k", []byte(`{"c":3}`)))

		got, err := d.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `{"c":3}`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		require.NoError(t, d.Set(ctx, "k", []byte(`1`)))
		require.NoError(t, d.Remove(ctx, "k"))
		require.NoError(t, d.Remove(ctx, "never-written"))

		_, err := d.Get(ctx, "k")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("clear wipes every key", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		for _, key := range []string{kv.KeyOfflineQueue, kv.KeyShoppingLists, kv.KeyCachedProducts} {
			require.NoError(t, d.Set(ctx, key, []byte(`[]`)))
		}

		require.NoError(t, d.Clear(ctx))

		for _, key := range []string{kv.KeyOfflineQueue, kv.KeyShoppingLists, kv.KeyCachedProducts} {
			_, err := d.Get(ctx, key)
			assert.ErrorIs(t, err, kv.ErrNotFound, key)
		}

		require.NoError(t, d.Set(ctx, "after-clear", []byte(`true`)))
		got, err := d.Get(ctx, "after-clear")
		require.NoError(t, err)
		assert.Equal(t, `true`, string(got))
	})
}
