package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/store"
)

func TestHashKey(t *testing.T) {
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", store.HashKey(""))
	require.Len(t, store.HashKey("Hello world."), 32)
	require.NotEqual(t, store.HashKey("Hello world."), store.HashKey("Hello world. "))
}

func TestContentCache_StorePersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_request_cache.json")
	cache := store.NewContentCache(path)

	_, ok := cache.Lookup("Hello world.")
	require.False(t, ok)

	require.NoError(t, cache.Store("Hello world.", "你好世界。"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]string
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Equal(t, map[string]string{store.HashKey("Hello world."): "你好世界。"}, onDisk)
	require.Contains(t, string(data), "\n  \"", "written with two-space indentation")

	reloaded := store.NewContentCache(path)
	got, ok := reloaded.Lookup("Hello world.")
	require.True(t, ok)
	require.Equal(t, "你好世界。", got)
}

func TestContentCache_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := store.NewContentCache(path)
	require.NoError(t, cache.Store("a", "b"))

	require.NoError(t, cache.Clear())
	require.Zero(t, cache.Len())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, cache.Clear(), "clearing without a file is not an error")
}

func TestContentCache_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cache := store.NewContentCache(path)
	require.Zero(t, cache.Len())
	require.NoError(t, cache.Store("x", "y"))
	require.Equal(t, 1, store.NewContentCache(path).Len())
}
