package service

import (
	"context"
	"sync"
	"time"
)

// DebounceStore decides whether an observation keyed by (entity, session)
// should be recorded or suppressed. Implementations must be safe for
// concurrent use; impressions arrive from parallel request handlers.
type DebounceStore interface {
	// Observe reports whether an event for key should be recorded, and
	// marks the key as seen when it is.
	Observe(ctx context.Context, key string, window time.Duration) bool
}

// memoryDebounce is the in-process DebounceStore: a mutex-guarded map of
// key -> last-recorded time, scoped to its owner so tests can construct
// isolated instances.
type memoryDebounce struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	clock Clock

	// sweepAt is the next time stale keys get pruned so the map does not
	// grow without bound under long uptimes.
	sweepAt time.Time
}

const debounceSweepEvery = time.Minute

// NewMemoryDebounce returns an in-process DebounceStore using the given clock.
func NewMemoryDebounce(clock Clock) DebounceStore {
	return &memoryDebounce{
		seen:    make(map[string]time.Time),
		clock:   clock,
		sweepAt: clock.Now().Add(debounceSweepEvery),
	}
}

func (d *memoryDebounce) Observe(_ context.Context, key string, window time.Duration) bool {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.seen[key]; ok && now.Sub(last) < window {
		return false
	}
	d.seen[key] = now

	if now.After(d.sweepAt) {
		for k, t := range d.seen {
			if now.Sub(t) >= window {
				delete(d.seen, k)
			}
		}
		d.sweepAt = now.Add(debounceSweepEvery)
	}

	return true
}
