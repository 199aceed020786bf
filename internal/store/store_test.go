package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, capacity int) *Store {
	t.Helper()
	s, err := New(Options{
		Capacity:           capacity,
		LogFile:            filepath.Join(t.TempDir(), "wal.log"),
		CleanupInterval:    time.Hour,
		CompactionInterval: time.Hour,
		MaxLogSize:         1 << 30,
	})
	require.NoError(t, err)
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := newTestStore(t, 10)

	require.NoError(t, s.Set("", "k1", "v1", 0))
	v, ok := s.Get("", "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestStore_GetMissingKey(t *testing.T) {
	s := newTestStore(t, 10)
	_, ok := s.Get("", "missing")
	assert.False(t, ok)
}

func TestStore_SetEmptyKeyFails(t *testing.T) {
	s := newTestStore(t, 10)
	err := s.Set("", "", "v", 0)
	assert.Error(t, err)
}

func TestStore_OverwriteUpdatesValue(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("", "k1", "v1", 0))
	require.NoError(t, s.Set("", "k1", "v2", 0))

	v, ok := s.Get("", "k1")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, s.Size(""))
}

func TestStore_DeleteRemovesKey(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("", "k1", "v1", 0))

	ok, err := s.Delete("", "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok = s.Get("", "k1")
	assert.False(t, ok)
}

func TestStore_DeleteMissingKeyReturnsFalse(t *testing.T) {
	s := newTestStore(t, 10)
	ok, err := s.Delete("", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("", "k1", "v1", 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	_, ok := s.Get("", "k1")
	assert.False(t, ok, "expired key should be treated as a miss")
}

func TestStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestStore(t, 2)

	require.NoError(t, s.Set("", "a", "1", 0))
	require.NoError(t, s.Set("", "b", "2", 0))
	_, _ = s.Get("", "a") // touch "a" so "b" becomes least recently used

	require.NoError(t, s.Set("", "c", "3", 0))

	_, ok := s.Get("", "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = s.Get("", "a")
	assert.True(t, ok)
	_, ok = s.Get("", "c")
	assert.True(t, ok)

	stats := s.GetStats("")
	assert.Equal(t, uint64(1), stats.Evictions)
}

func TestStore_Namespacing(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("app1", "k1", "v1", 0))
	require.NoError(t, s.Set("app2", "k1", "v2", 0))

	v1, ok := s.Get("app1", "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", v1)

	v2, ok := s.Get("app2", "k1")
	require.True(t, ok)
	assert.Equal(t, "v2", v2)

	namespaces := s.ListNamespaces()
	assert.ElementsMatch(t, []string{"app1", "app2"}, namespaces)
}

func TestStore_ClearNamespace(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("app1", "k1", "v1", 0))
	require.NoError(t, s.Set("app1", "k2", "v2", 0))
	require.NoError(t, s.Set("app2", "k1", "v3", 0))

	removed, err := s.ClearNamespace("app1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, s.Size("app1"))
	assert.Equal(t, 1, s.Size("app2"))
}

func TestStore_GetStatsTracksHitsAndMisses(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("", "k1", "v1", 0))

	_, _ = s.Get("", "k1")
	_, _ = s.Get("", "missing")

	stats := s.GetStats("")
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
	assert.Equal(t, 1, stats.TotalKeys)
}

func TestStore_GetStatsPerNamespace(t *testing.T) {
	s := newTestStore(t, 10)
	require.NoError(t, s.Set("app1", "k1", "v1", 0))
	_, _ = s.Get("app1", "k1")

	stats := s.GetStats("app1")
	require.NotNil(t, stats.NamespaceStats)
	assert.Equal(t, uint64(1), stats.NamespaceStats.CacheHits)
	assert.Equal(t, 1, stats.NamespaceStats.TotalKeys)
}
