package store

import "time"

// namespaceStats is the per-namespace hit/miss counters. TotalKeys is
// derived on read, never stored, so it is left out here and filled in by
// Store.GetStats.
type namespaceStats struct {
	CacheHits   uint64
	CacheMisses uint64
}

// stats holds the global counters plus one namespaceStats per namespace
// label (the unnamed namespace buckets under "default").
type stats struct {
	CacheHits      uint64
	CacheMisses    uint64
	Evictions      uint64
	LogSize        uint64
	LastCompaction *time.Time
	StartTime      time.Time
	byNamespace    map[string]*namespaceStats
}

func newStats() *stats {
	return &stats{
		StartTime:   time.Now(),
		byNamespace: make(map[string]*namespaceStats),
	}
}

func (s *stats) namespace(label string) *namespaceStats {
	ns, ok := s.byNamespace[label]
	if !ok {
		ns = &namespaceStats{}
		s.byNamespace[label] = ns
	}
	return ns
}

func (s *stats) recordHit(nsLabel string) {
	s.CacheHits++
	s.namespace(nsLabel).CacheHits++
}

func (s *stats) recordMiss(nsLabel string) {
	s.CacheMisses++
	s.namespace(nsLabel).CacheMisses++
}

func (s *stats) recordEviction() {
	s.Evictions++
}

// NamespaceStatsSnapshot is the JSON-friendly view of one namespace's
// counters, including the derived total_keys count.
type NamespaceStatsSnapshot struct {
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
	TotalKeys   int    `json:"total_keys"`
}

// StatsSnapshot is the value returned by Store.GetStats.
type StatsSnapshot struct {
	TotalKeys      int                                `json:"total_keys"`
	CacheHits      uint64                              `json:"cache_hits"`
	CacheMisses    uint64                              `json:"cache_misses"`
	Evictions      uint64                              `json:"evictions"`
	LogSize        uint64                              `json:"log_size"`
	LastCompaction *time.Time                          `json:"last_compaction,omitempty"`
	UptimeSeconds  float64                              `json:"uptime_seconds"`
	Namespace      string                              `json:"namespace,omitempty"`
	NamespaceStats *NamespaceStatsSnapshot              `json:"namespace_stats,omitempty"`
	Namespaces     map[string]NamespaceStatsSnapshot    `json:"namespaces,omitempty"`
}
