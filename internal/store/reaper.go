package store

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// reaper is a timer-driven task that wakes every interval, acquires the
// facade lock, and removes entries whose TTL has elapsed.
//
// Lazy expiry on read already frees an expired key the moment it is
// looked up; the reaper exists so cold keys that are never read don't
// occupy capacity and cause spurious evictions of live keys.
type reaper struct {
	store    *Store
	interval atomic.Int64 // time.Duration, nanoseconds
	stop     chan struct{}
	done     chan struct{}
}

func newReaper(s *Store, interval time.Duration) *reaper {
	r := &reaper{
		store: s,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	r.interval.Store(int64(interval))
	return r
}

// setInterval updates the sweep period observed at the next wake boundary
// (used by config hot-reload). Safe to call concurrently with run.
func (r *reaper) setInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.interval.Store(int64(d))
}

func (r *reaper) run() {
	defer close(r.done)
	timer := time.NewTimer(time.Duration(r.interval.Load()))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						log.Error().Interface("panic", rec).Msg("ttl reaper sweep panicked, continuing")
					}
				}()
				r.sweepOnce()
			}()
			timer.Reset(time.Duration(r.interval.Load()))
		case <-r.stop:
			return
		}
	}
}

// sweepOnce removes every expired entry. A panic mid-sweep is recovered
// and logged by run's wrapper so the task keeps ticking.
func (r *reaper) sweepOnce() {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var expired []*Entry
	for _, k := range r.store.index.keys() {
		e := r.store.index.lookup(k)
		if e != nil && e.Expired(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		r.store.index.remove(e)
	}
	if len(expired) > 0 {
		log.Debug().Int("count", len(expired)).Msg("ttl reaper swept expired entries")
	}
}

// cancel signals the task to stop and waits for it to exit.
func (r *reaper) cancel() {
	close(r.stop)
	<-r.done
}
