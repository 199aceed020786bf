package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact_RewritesWALToOneRecordPerLiveKey(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "wal.log")

	store, err := New(Options{Capacity: 10, LogFile: logFile, CleanupInterval: time.Hour, CompactionInterval: time.Hour})
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	defer store.Shutdown()

	require.NoError(t, store.Set("", "a", "1", 0))
	require.NoError(t, store.Set("", "a", "2", 0)) // overwritten — two records for one live key
	require.NoError(t, store.Set("", "b", "3", 0))
	_, err = store.Delete("", "b") // tombstoned — should not survive compaction
	require.NoError(t, err)

	require.NoError(t, store.Compact())

	records, err := store.wal.readAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "only the one live key should remain")
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "2", records[0].Value)
}

func TestCompact_PreservesBackupBeforeRename(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "wal.log")

	store, err := New(Options{Capacity: 10, LogFile: logFile, CleanupInterval: time.Hour, CompactionInterval: time.Hour})
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	defer store.Shutdown()

	require.NoError(t, store.Set("", "a", "1", 0))
	require.NoError(t, store.Compact())

	matches, err := filepath.Glob(logFile + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = os.Stat(logFile)
	assert.NoError(t, err, "canonical WAL path must exist after rename")
}

func TestCompact_DropsAlreadyExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "wal.log")

	store, err := New(Options{Capacity: 10, LogFile: logFile, CleanupInterval: time.Hour, CompactionInterval: time.Hour})
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	defer store.Shutdown()

	require.NoError(t, store.Set("", "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, store.Compact())

	records, err := store.wal.readAll()
	require.NoError(t, err)
	assert.Len(t, records, 0)
}
