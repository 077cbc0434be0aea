package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".storyfeed", "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("feed.sort", "oldest"))
	require.NoError(t, store.Set("feed.page_size", 30))
	require.NoError(t, store.Set("prefetch.enabled", false))

	assert.Equal(t, "oldest", store.GetString("feed.sort"))
	assert.Equal(t, 30, store.GetInt("feed.page_size"))
	assert.False(t, store.GetBool("prefetch.enabled"))
	_, ok := store.Get("prefetch.enabled")
	assert.True(t, ok)
	assert.Equal(t, []string{"feed.page_size", "feed.sort", "prefetch.enabled"}, store.Keys())
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("feed.page_size", "many"))

	assert.Zero(t, store.GetInt("feed.page_size"))
	assert.False(t, store.GetBool("feed.page_size"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_PersistsAsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("feed.page_size", 25))
	require.NoError(t, store.Set("freshness.interval_seconds", 90))

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[feed]")
	assert.Contains(t, string(raw), "page_size = 25")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.GetInt("feed.page_size"))
	assert.Equal(t, 90, reloaded.GetInt("freshness.interval_seconds"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "[feed]\nsort = \"oldest\"\nmax_retries = 5\n\n[prefetch]\nenabled = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "oldest", store.GetString("feed.sort"))
	assert.Equal(t, 5, store.GetInt("feed.max_retries"))
	assert.True(t, store.GetBool("prefetch.enabled"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[feed\nbroken"), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("feed.sort", "newest"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetUnmarshallableValueIsRolledBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("feed.bad", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("feed.bad")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("feed.page_size", n+1)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("feed.page_size")
		}()
	}
	wg.Wait()

	assert.Positive(t, store.GetInt("feed.page_size"))
}

func TestNestMap_RoundTrip(t *testing.T) {
	flat := map[string]any{"a.b": 1, "a.c": "x", "d": true}

	assert.Equal(t, flat, flattenMap(nestMap(flat), ""))
}
