package store

import (
	"testing"

	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(dir string) (domain.KeyValueStore, error) {
	t.Helper()
	return map[string]func(dir string) (domain.KeyValueStore, error){
		BackendBolt:   func(dir string) (domain.KeyValueStore, error) { return Open(BackendBolt, dir) },
		BackendSQLite: func(dir string) (domain.KeyValueStore, error) { return Open(BackendSQLite, dir) },
	}
}

func TestStore_SetGetRemove(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv, err := open(t.TempDir())
			require.NoError(t, err)
			defer kv.Close()

			_, ok, err := kv.Get("watchlist")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, kv.Set("watchlist", `[{"id":1}]`))
			v, ok, err := kv.Get("watchlist")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, v)

			require.NoError(t, kv.Set("watchlist", `[]`))
			v, _, err = kv.Get("watchlist")
			require.NoError(t, err)
			assert.Equal(t, `[]`, v, "second Set should overwrite")

			require.NoError(t, kv.Remove("watchlist"))
			_, ok, err = kv.Get("watchlist")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, kv.Remove("never-set"), "removing a missing key is not an error")
		})
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			kv, err := open(dir)
			require.NoError(t, err)
			require.NoError(t, kv.Set("watched", `[550]`))
			require.NoError(t, kv.Close())

			kv, err = open(dir)
			require.NoError(t, err)
			defer kv.Close()

			v, ok, err := kv.Get("watched")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[550]`, v)
		})
	}
}

func TestBoltStore_MemoryOnly(t *testing.T) {
	kv, err := Open(BackendMemory, "")
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set("k", "v"))
	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, kv.Remove("k"))
	_, ok, _ = kv.Get("k")
	assert.False(t, ok)
}

func TestBoltStore_FailedWriteIsNotCached(t *testing.T) {
	kv, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, kv.Set("watched", `[550]`))
	require.NoError(t, kv.Close())

	// The db is gone, so the write fails and the old value stays visible
	assert.Error(t, kv.Set("watched", `[550,348]`))
	v, ok, err := kv.Get("watched")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[550]`, v)

	assert.Error(t, kv.Remove("watched"))
	v, _, _ = kv.Get("watched")
	assert.Equal(t, `[550]`, v, "a failed remove keeps the cached value")
}

func TestSQLiteStore_UseAfterClose(t *testing.T) {
	kv, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, kv.Set("watched", `[550]`))
	require.NoError(t, kv.Close())
	require.NoError(t, kv.Close(), "second Close is a no-op")

	_, _, err = kv.Get("watched")
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.ErrorIs(t, kv.Set("watched", `[]`), domain.ErrStoreClosed)
	assert.ErrorIs(t, kv.Remove("watched"), domain.ErrStoreClosed)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
}
