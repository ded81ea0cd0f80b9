// Package dedupe tracks already-processed game identifiers within a run.
//
// The deduper is an optimization, not a source of truth: the daily snapshot
// baseline is what durably guards against double counting, so discarding and
// rebuilding this state across restarts is always safe.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen game IDs so a feed that re-lists completed games does
// not re-emit the same event twice in one run.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size reports the number of IDs currently tracked.
	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map. When the bound is
// reached the whole set is dropped and rebuilt; a tournament day has a few
// dozen games, so the bound exists only to cap a misbehaving feed.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		// Full reset; the snapshot baseline keeps correctness intact.
		d.seen = make(map[string]struct{}, d.maxSize)
		d.size.Store(0)
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
