package cache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/cache"
)

func openTestStore(t *testing.T) *cache.SQLiteStore {
	t.Helper()

	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "vayu.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSQLiteStore_SetGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "vayu:aqi:city:pune", []byte(`{"aqi":120}`)))

	value, err := store.Get(ctx, "vayu:aqi:city:pune")
	require.NoError(t, err)
	assert.JSONEq(t, `{"aqi":120}`, string(value))
}

func TestSQLiteStore_Get_Missing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "vayu:missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestSQLiteStore_Set_Overwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old")))
	require.NoError(t, store.Set(ctx, "k", []byte("new")))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(value))
}

func TestSQLiteStore_DeletePrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "vayu:aqi:a", []byte("1")))
	require.NoError(t, store.Set(ctx, "vayu:aqi:b", []byte("2")))
	require.NoError(t, store.Set(ctx, "vayu:ai:c", []byte("3")))
	require.NoError(t, store.Set(ctx, "other:d", []byte("4")))

	require.NoError(t, store.DeletePrefix(ctx, "vayu:"))

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other:d"}, keys)
}

func TestSQLiteStore_Keys_Sorted(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "vayu:b", []byte("2")))
	require.NoError(t, store.Set(ctx, "vayu:a", []byte("1")))

	keys, err := store.Keys(ctx, "vayu:")
	require.NoError(t, err)
	assert.Equal(t, []string{"vayu:a", "vayu:b"}, keys)
}
