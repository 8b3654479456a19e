// Package kvtest checks the behavior shared by every core.KVStore.
package kvtest

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/reportcard/core"
)

// Run tests a pair of stores sharing the same backend under the prefixes "a_" and "b_".
func Run(t *testing.T, a, b core.KVStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := a.Get(ctx, "lol")
		assert.Equal(t, core.ErrKeyNotFound, errors.Cause(err))
		assert.NoError(t, a.Delete(ctx, "lol"))
	})

	t.Run("set, get, overwrite", func(t *testing.T) {
		require.NoError(t, a.Set(ctx, "students", []byte(`[{"id":"1"}]`)))
		got, err := a.Get(ctx, "students")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(got))

		require.NoError(t, a.Set(ctx, "students", []byte(`[]`)))
		got, err = a.Get(ctx, "students")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("values are copied", func(t *testing.T) {
		value := []byte("abc")
		require.NoError(t, a.Set(ctx, "copy", value))
		value[0] = 'x'
		got, err := a.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
		got[1] = 'x'
		got, err = a.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("prefixes are isolated", func(t *testing.T) {
		require.NoError(t, a.Set(ctx, "settings", []byte("a")))
		require.NoError(t, b.Set(ctx, "settings", []byte("b")))

		got, err := a.Get(ctx, "settings")
		require.NoError(t, err)
		assert.Equal(t, "a", string(got))
		got, err = b.Get(ctx, "settings")
		require.NoError(t, err)
		assert.Equal(t, "b", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, a.Set(ctx, "gone", []byte("1")))
		require.NoError(t, a.Delete(ctx, "gone"))
		_, err := a.Get(ctx, "gone")
		assert.Equal(t, core.ErrKeyNotFound, errors.Cause(err))
	})

	t.Run("clear only its prefix", func(t *testing.T) {
		require.NoError(t, a.Set(ctx, "comments", []byte("[]")))
		require.NoError(t, a.Clear(ctx))

		for _, key := range []string{"students", "settings", "comments"} {
			_, err := a.Get(ctx, key)
			assert.Equal(t, core.ErrKeyNotFound, errors.Cause(err), key)
		}
		got, err := b.Get(ctx, "settings")
		require.NoError(t, err)
		assert.Equal(t, "b", string(got))
	})
}
