package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutGetList(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "latest.json", []byte(`{"a":1}`)))
	require.NoError(t, store.Put(ctx, "daily/2026-10-14.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "daily/2026-10-15.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "latest.json", []byte(`{"a":2}`)))

	data, err := store.Get(ctx, "latest.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	daily, err := store.List(ctx, "daily/")
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "daily/2026-10-14.json", daily[0].Key)

	_, err = store.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageStaysInsideBaseDir(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(base, "inner"))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "../escape.json", []byte(`{}`)))
	_, err = os.Stat(filepath.Join(base, "escape.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "inner", "escape.json"))
	assert.NoError(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "daily/old.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "daily/new.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "latest.json", []byte(`{}`)))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "daily", "old.json"), past, past))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "latest.json"), past, past))

	deleted, err := store.CleanupOlderThan(ctx, "daily/", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"daily/old.json"}, deleted)

	_, err = store.Get(ctx, "latest.json")
	assert.NoError(t, err)
}
