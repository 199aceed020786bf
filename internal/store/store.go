// Package store implements the core storage engine: a concurrent LRU
// cache with TTL expiry, a write-ahead log with snapshot-style
// compaction, crash recovery, and the namespace-scoped facade that
// orchestrates them.
//
// Durability model: every mutation is appended to the WAL and fsynced
// before it is applied to memory, so an acknowledged operation is durable
// across a crash. The facade lock serializes every public operation —
// including the time spent blocked on WAL I/O — so WAL record order
// always equals operation commit order.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store is the public storage facade.
type Store struct {
	mu         sync.Mutex
	index      *lruIndex
	wal        *wal
	walPath    string
	capacity   int
	maxLogSize int
	stats      *stats

	reaper    *reaper
	compactor *compactor
}

// Options configures a new Store. Zero values fall back to DefaultOptions.
type Options struct {
	Capacity           int
	LogFile            string
	CleanupInterval    time.Duration
	CompactionInterval time.Duration
	MaxLogSize         int // trigger an out-of-band compaction once LogSize reaches this
}

// DefaultOptions returns the recognized configuration defaults.
func DefaultOptions() Options {
	return Options{
		Capacity:           100,
		LogFile:            filepath.Join("data", "wal.log"),
		CleanupInterval:    60 * time.Second,
		CompactionInterval: 300 * time.Second,
		MaxLogSize:         1000,
	}
}

// New creates a Store backed by the WAL at opts.LogFile. It does not yet
// recover or start background tasks — call Initialize for that, so tests
// can construct a Store without immediately spinning up timers.
func New(opts Options) (*Store, error) {
	defaults := DefaultOptions()
	if opts.Capacity <= 0 {
		opts.Capacity = defaults.Capacity
	}
	if opts.LogFile == "" {
		opts.LogFile = defaults.LogFile
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaults.CleanupInterval
	}
	if opts.CompactionInterval <= 0 {
		opts.CompactionInterval = defaults.CompactionInterval
	}
	if opts.MaxLogSize <= 0 {
		opts.MaxLogSize = defaults.MaxLogSize
	}

	if dir := filepath.Dir(opts.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create wal directory: %w", err)
		}
	}

	w, err := openWAL(opts.LogFile)
	if err != nil {
		return nil, NewErrRecoveryFailed(err)
	}

	s := &Store{
		index:      newLRUIndex(),
		wal:        w,
		walPath:    opts.LogFile,
		capacity:   opts.Capacity,
		maxLogSize: opts.MaxLogSize,
		stats:      newStats(),
	}
	s.reaper = newReaper(s, opts.CleanupInterval)
	s.compactor = newCompactor(s, opts.CompactionInterval)
	return s, nil
}

// Initialize replays the WAL and starts the reaper and compactor
// background tasks. Must be called once, before serving requests.
func (s *Store) Initialize() error {
	s.mu.Lock()
	err := s.recover()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	go s.reaper.run()
	go s.compactor.run()
	return nil
}

// Shutdown signals the reaper and compactor to stop and waits for both to
// terminate, then closes the WAL file handle.
func (s *Store) Shutdown() error {
	s.reaper.cancel()
	s.compactor.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.close()
}

// SetCleanupInterval updates the reaper's sweep period (used by config
// hot-reload).
func (s *Store) SetCleanupInterval(d time.Duration) {
	s.reaper.setInterval(d)
}

// SetCompactionInterval updates the compactor's period (used by config
// hot-reload).
func (s *Store) SetCompactionInterval(d time.Duration) {
	s.compactor.setInterval(d)
}

// ─── Public API ─────────────────────────────────────────────────────────────

// Set writes (key, value) with an optional TTL into namespace. If the key
// already exists its value and TTL are overwritten and it moves to the
// head of the LRU order; otherwise it is inserted at the head, evicting
// the tail first if that would exceed capacity.
//
// The WAL record is appended, and fsynced, before the in-memory mutation
// is applied — on append failure the operation aborts with no in-memory
// change.
func (s *Store) Set(namespace, key, value string, ttl time.Duration) error {
	if key == "" {
		return NewErrInvalidKey("set")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fk := fullKey(namespace, key)
	now := time.Now()

	var expiresAt *time.Time
	var ttlSeconds *int64
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
		secs := int64(ttl.Seconds())
		ttlSeconds = &secs
	}

	rec := record{
		Timestamp: timestampSeconds(now),
		Action:    actionSet,
		Key:       key,
		Value:     value,
		TTL:       ttlSeconds,
		Namespace: namespace,
	}
	if err := s.wal.append(rec); err != nil {
		return NewErrWALAppendFailed(err, actionSet, key)
	}
	s.recordAppend()

	if existing := s.index.lookup(fk); existing != nil {
		existing.Value = value
		existing.ExpiresAt = expiresAt
		existing.AccessTime = now
		s.index.touch(existing)
	} else {
		if s.index.size() >= s.capacity {
			if evicted := s.index.evictTail(); evicted != nil {
				s.stats.recordEviction()
			}
		}
		s.index.insert(&Entry{
			Key:        key,
			Namespace:  namespace,
			FullKey:    fk,
			Value:      value,
			ExpiresAt:  expiresAt,
			AccessTime: now,
		})
	}

	s.stats.namespace(namespaceLabel(namespace)) // ensure the namespace bucket exists even with no hits/misses yet
	return nil
}

// Get looks up key in namespace. A miss (absent or expired) increments
// miss counters and returns (_, false); a hit moves the entry to the head
// of the LRU order, updates its access time, increments hit counters, and
// returns (value, true).
func (s *Store) Get(namespace, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fk := fullKey(namespace, key)
	nsLabel := namespaceLabel(namespace)

	e := s.index.lookup(fk)
	if e == nil {
		s.stats.recordMiss(nsLabel)
		return "", false
	}
	if e.Expired(time.Now()) {
		s.index.remove(e)
		s.stats.recordMiss(nsLabel)
		return "", false
	}

	e.AccessTime = time.Now()
	s.index.touch(e)
	s.stats.recordHit(nsLabel)
	return e.Value, true
}

// Delete removes key from namespace if present, appending a DEL record.
// Returns false with no WAL write if the key was already absent.
func (s *Store) Delete(namespace, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(namespace, key)
}

// deleteLocked assumes s.mu is already held.
func (s *Store) deleteLocked(namespace, key string) (bool, error) {
	fk := fullKey(namespace, key)
	e := s.index.lookup(fk)
	if e == nil {
		return false, nil
	}

	rec := record{
		Timestamp: timestampSeconds(time.Now()),
		Action:    actionDel,
		Key:       key,
		Namespace: namespace,
	}
	if err := s.wal.append(rec); err != nil {
		return false, NewErrWALAppendFailed(err, actionDel, key)
	}
	s.recordAppend()

	s.index.remove(e)
	return true, nil
}

// recordAppend increments the live WAL record count and, once it reaches
// maxLogSize, asks the compactor to run out-of-band instead of waiting for
// its next timer tick. Assumes s.mu is held.
func (s *Store) recordAppend() {
	s.stats.LogSize++
	if s.stats.LogSize >= uint64(s.maxLogSize) {
		s.compactor.requestCompaction()
	}
}

// Size returns the total live entry count, or (if namespace is non-empty)
// the count of keys whose flattened form has prefix "namespace:".
func (s *Store) Size(namespace string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeLocked(namespace)
}

func (s *Store) sizeLocked(namespace string) int {
	if namespace == "" {
		return s.index.size()
	}
	prefix := namespacePrefix(namespace)
	count := 0
	for _, k := range s.index.keys() {
		if hasPrefix(k, prefix) {
			count++
		}
	}
	return count
}

// ListNamespaces returns the sorted, distinct set of namespaces derived
// from currently-live full keys.
func (s *Store) ListNamespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, k := range s.index.keys() {
		ns, _ := splitFullKey(k)
		if ns != "" {
			seen[ns] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ClearNamespace removes every entry in namespace, appending one DEL
// record per removed key, and returns the count removed.
func (s *Store) ClearNamespace(namespace string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := namespacePrefix(namespace)
	var toRemove []string
	for _, k := range s.index.keys() {
		if hasPrefix(k, prefix) {
			toRemove = append(toRemove, k)
		}
	}

	removed := 0
	for _, fk := range toRemove {
		_, key := splitFullKey(fk)
		ok, err := s.deleteLocked(namespace, key)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// GetStats returns a snapshot of the global counters, plus a per-namespace
// breakdown when namespace is non-empty.
func (s *Store) GetStats(namespace string) StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalKeys:      s.index.size(),
		CacheHits:      s.stats.CacheHits,
		CacheMisses:    s.stats.CacheMisses,
		Evictions:      s.stats.Evictions,
		LogSize:        s.stats.LogSize,
		LastCompaction: s.stats.LastCompaction,
		UptimeSeconds:  time.Since(s.stats.StartTime).Seconds(),
	}

	if namespace != "" {
		label := namespaceLabel(namespace)
		ns := s.stats.namespace(label)
		snap.Namespace = namespace
		snap.NamespaceStats = &NamespaceStatsSnapshot{
			CacheHits:   ns.CacheHits,
			CacheMisses: ns.CacheMisses,
			TotalKeys:   s.sizeLocked(namespace),
		}
		snap.TotalKeys = s.sizeLocked(namespace)
		return snap
	}

	snap.Namespaces = make(map[string]NamespaceStatsSnapshot, len(s.stats.byNamespace))
	for label, ns := range s.stats.byNamespace {
		namespace := labelToNamespace(label)
		total := s.sizeLocked(namespace)
		if namespace == "" {
			// sizeLocked("") is the store-wide count; the default bucket
			// holds only keys stored without a namespace.
			total = 0
			for _, k := range s.index.keys() {
				if kns, _ := splitFullKey(k); kns == "" {
					total++
				}
			}
		}
		snap.Namespaces[label] = NamespaceStatsSnapshot{
			CacheHits:   ns.CacheHits,
			CacheMisses: ns.CacheMisses,
			TotalKeys:   total,
		}
	}
	return snap
}

// Compact runs a synchronous snapshot compaction under the facade lock.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compact()
}

// ─── helpers ────────────────────────────────────────────────────────────────

func timestampSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// labelToNamespace reverses namespaceLabel for the "default" bucket when
// building the all-namespaces stats map.
func labelToNamespace(label string) string {
	if label == defaultNamespace {
		return ""
	}
	return label
}
