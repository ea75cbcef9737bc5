// Package dedupe tracks already-seen effort IDs so that replayed webhook
// deliveries are processed at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen effort IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing a retry. Used when
	// an effort was marked seen but failed to enqueue (backpressure).
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked IDs.
	Size() int64
}

// memoryDeduper is a bounded in-memory Deduper. When full, the oldest
// recorded ID is evicted (FIFO) via a ring buffer over the insertion order.
// maxSize <= 0 means unbounded.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // ring of insertion order, bounded mode only
	head    int      // next eviction slot once the ring is full
	maxSize int
	size    atomic.Int64
}

// NewMemoryDeduper creates a deduper with configuration options.
func NewMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.order) < d.maxSize {
			d.order = append(d.order, id)
		} else {
			// Ring is full: evict the oldest and reuse its slot. Slots may
			// hold IDs already unrecorded; eviction tolerates that.
			if old := d.order[d.head]; old != "" {
				if _, ok := d.seen[old]; ok {
					delete(d.seen, old)
					d.size.Add(-1)
				}
			}
			d.order[d.head] = id
			d.head = (d.head + 1) % d.maxSize
		}
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *memoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	for i := range d.order {
		if d.order[i] == id {
			d.order[i] = ""
			break
		}
	}
}

func (d *memoryDeduper) Size() int64 {
	return d.size.Load()
}
