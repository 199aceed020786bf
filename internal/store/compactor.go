package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// compactor periodically rewrites the WAL from a live snapshot of the
// LRU index so the on-disk log shrinks back down to one SET record per
// live entry.
//
// The new WAL becomes visible with a single atomic rename(tmp, live);
// the previous live file is preserved at a backup path by copying it to
// that path *before* the rename, so there is never a window where the
// canonical path is absent (see DESIGN.md for why this replaces a
// two-step rename).
type compactor struct {
	store    *Store
	interval atomic.Int64
	trigger  chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

func newCompactor(s *Store, interval time.Duration) *compactor {
	c := &compactor{
		store:   s,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.interval.Store(int64(interval))
	return c
}

// requestCompaction asks the background task to compact before its next
// timer tick. Non-blocking: if a request is already pending, this is a
// no-op — one pending trigger is enough to cover any number of callers
// piling up while compaction is running.
func (c *compactor) requestCompaction() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *compactor) setInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.interval.Store(int64(d))
}

func (c *compactor) run() {
	defer close(c.done)
	timer := time.NewTimer(time.Duration(c.interval.Load()))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if err := c.store.Compact(); err != nil {
				log.Error().Err(err).Msg("background compaction failed, will retry next tick")
			}
			timer.Reset(time.Duration(c.interval.Load()))
		case <-c.trigger:
			if err := c.store.Compact(); err != nil {
				log.Error().Err(err).Msg("log-size-triggered compaction failed, will retry next tick")
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(time.Duration(c.interval.Load()))
		case <-c.stop:
			return
		}
	}
}

func (c *compactor) cancel() {
	close(c.stop)
	<-c.done
}

// compact rewrites the WAL from a live snapshot. Caller must hold s.mu
// for the entire duration — compaction is a stop-the-world snapshot.
func (s *Store) compact() error {
	now := time.Now()

	// Snapshot keys, peek values/expiry without touching LRU order, and
	// drop anything already expired.
	keys := s.index.keys()
	type surviving struct {
		namespace string
		key       string
		value     string
		expiresAt *time.Time
	}
	entries := make([]surviving, 0, len(keys))
	for _, fk := range keys {
		e := s.index.lookup(fk)
		if e == nil {
			continue
		}
		if e.Expired(now) {
			continue
		}
		entries = append(entries, surviving{
			namespace: e.Namespace,
			key:       e.Key,
			value:     e.Value,
			expiresAt: e.ExpiresAt,
		})
	}

	// Write the fresh WAL to a temp file.
	tmpPath := s.walPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return NewErrCompactionFailed(err)
	}
	writer := func() error {
		enc := json.NewEncoder(tmpFile)
		for _, e := range entries {
			rec := record{
				Timestamp: timestampSeconds(now),
				Action:    actionSet,
				Key:       e.key,
				Value:     e.value,
				Namespace: e.namespace,
			}
			if e.expiresAt != nil {
				remaining := int64(time.Until(*e.expiresAt).Seconds())
				if remaining <= 0 {
					continue
				}
				rec.TTL = &remaining
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return tmpFile.Sync()
	}()
	closeErr := tmpFile.Close()
	if writer != nil {
		os.Remove(tmpPath)
		return NewErrCompactionFailed(writer)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return NewErrCompactionFailed(closeErr)
	}

	// Preserve the current WAL at a backup path, then atomically install
	// the new one under the canonical path.
	backupPath := fmt.Sprintf("%s.backup.%d", s.walPath, now.Unix())
	if err := copyFile(s.walPath, backupPath); err != nil && !os.IsNotExist(err) {
		os.Remove(tmpPath)
		return NewErrCompactionFailed(err)
	}

	if err := s.wal.close(); err != nil {
		os.Remove(tmpPath)
		return NewErrCompactionFailed(err)
	}
	if err := os.Rename(tmpPath, s.walPath); err != nil {
		// Re-open the live WAL so the store can keep serving even though
		// compaction failed.
		if reopened, reopenErr := openWAL(s.walPath); reopenErr == nil {
			s.wal = reopened
		}
		return NewErrCompactionFailed(err)
	}

	reopened, err := openWAL(s.walPath)
	if err != nil {
		return NewErrCompactionFailed(err)
	}
	s.wal = reopened

	// Update last_compaction and reset log_size to the number of records
	// now on disk.
	count, err := s.wal.count()
	if err != nil {
		return NewErrCompactionFailed(err)
	}
	t := now
	s.stats.LastCompaction = &t
	s.stats.LogSize = uint64(count)
	return nil
}

// copyFile duplicates src to dst, used to keep a backup of the live WAL
// before it is replaced. Returns an *os.PathError satisfying
// os.IsNotExist when src does not exist (e.g. a brand new store compacted
// before its first write).
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
