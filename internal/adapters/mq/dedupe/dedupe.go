// Package dedupe remembers recently submitted request ids.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the window size used when none is configured.
const DefaultCapacity = 4096

// Window records ids in a bounded FIFO window so a reused id can be
// rejected.
type Window interface {
	// SeenAndRecord reports whether id is in the window and records it if
	// not, in one atomic step.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id, allowing it to be submitted again. Used when a
	// recorded request never made it into the queue.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// window is a ring of slots indexed by a map. Evicting a slot that was
// unrecorded is a no-op.
type window struct {
	mu       sync.Mutex
	capacity int
	slots    []string
	index    map[string]int
	next     int
	size     atomic.Int64
}

// NewWindow creates an in-memory window.
func NewWindow(opts ...Option) Window {
	w := &window{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(w)
	}
	w.slots = make([]string, w.capacity)
	w.index = make(map[string]int, w.capacity)
	return w
}

func (w *window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}
	if old := w.slots[w.next]; old != "" {
		delete(w.index, old)
		w.size.Add(-1)
	}
	w.slots[w.next] = id
	w.index[id] = w.next
	w.next = (w.next + 1) % w.capacity
	w.size.Add(1)
	return false
}

func (w *window) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, ok := w.index[id]
	if !ok {
		return
	}
	delete(w.index, id)
	w.slots[slot] = ""
	w.size.Add(-1)
}

func (w *window) Size() int64 { return w.size.Load() }
