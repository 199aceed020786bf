package store

import "time"

// recover replays the WAL sequentially and rebuilds the LRU index,
// honoring elapsed TTLs against wall-clock time. Caller must hold s.mu.
// LRU order after recovery reflects record order — the last-touched key
// ends up at the head, since each replayed SET/DEL mutates the index
// exactly as Set/Delete would.
func (s *Store) recover() error {
	records, err := s.wal.readAll()
	if err != nil {
		return NewErrRecoveryFailed(err)
	}

	now := time.Now()
	for _, rec := range records {
		fk := fullKey(rec.Namespace, rec.Key)

		switch rec.Action {
		case actionSet:
			var expiresAt *time.Time
			if rec.TTL != nil {
				recordedAt := time.Unix(0, int64(rec.Timestamp*1e9))
				elapsed := now.Sub(recordedAt)
				remaining := time.Duration(*rec.TTL)*time.Second - elapsed
				if remaining <= 0 {
					// Expired between being written and being replayed.
					continue
				}
				t := now.Add(remaining)
				expiresAt = &t
			}

			// Later records win: if the key is already indexed (from an
			// earlier record being overwritten), replace it in place so
			// replay order, not insertion order, determines the final
			// LRU position.
			if existing := s.index.lookup(fk); existing != nil {
				existing.Value = rec.Value
				existing.ExpiresAt = expiresAt
				existing.AccessTime = now
				s.index.touch(existing)
				continue
			}
			if s.index.size() >= s.capacity {
				// Respect invariant 2 even across recovery; the evicted
				// key's last SET remains on the WAL it was just replayed
				// from, so it is not re-logged here.
				s.index.evictTail()
			}
			s.index.insert(&Entry{
				Key:        rec.Key,
				Namespace:  rec.Namespace,
				FullKey:    fk,
				Value:      rec.Value,
				ExpiresAt:  expiresAt,
				AccessTime: now,
			})

		case actionDel:
			if existing := s.index.lookup(fk); existing != nil {
				s.index.remove(existing)
			}
		}
	}

	// log_size counts only records appended by this process instance — it
	// intentionally stays at zero here and begins counting from the first
	// mutation after recovery.
	return nil
}
