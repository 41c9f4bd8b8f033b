// Package memory keeps a bounded chronological log of analyzed shots and
// answers similarity queries against it.
package memory

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/railshot/internal/domain/knowledge"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/metrics"
)

// Defaults.
const (
	DefaultCapacity = 1000
	DefaultLimit    = 3

	// SuccessThreshold is the minimum prediction for a remembered shot to
	// count as a successful pattern.
	SuccessThreshold = 75

	snapshotVersion = 1
)

// Entry is one remembered analysis.
type Entry struct {
	Shot             model.Shot `json:"shot"`
	PredictedSuccess int        `json:"predicted_success"`
	Timestamp        time.Time  `json:"timestamp"`
}

// Memory is a FIFO ring of entries. When full, appending evicts the oldest
// entry.
type Memory struct {
	mu       sync.RWMutex
	buf      []Entry
	head     int // index of the oldest entry
	size     int
	capacity int
	now      func() time.Time
}

// New creates an empty memory.
func New(opts ...Option) *Memory {
	m := &Memory{
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.buf = make([]Entry, m.capacity)
	return m
}

// Capacity returns the maximum number of entries.
func (m *Memory) Capacity() int { return m.capacity }

// Len returns the number of entries held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Record appends shot with its prediction, stamped with the current time.
func (m *Memory) Record(shot model.Shot, predicted int) Entry {
	e := Entry{Shot: shot, PredictedSuccess: predicted, Timestamp: m.now().UTC()}
	m.Append(e)
	return e
}

// Append adds e, evicting the oldest entry when full.
func (m *Memory) Append(e Entry) {
	m.mu.Lock()
	m.appendLocked(e)
	size := m.size
	m.mu.Unlock()
	metrics.UpdateMemorySize(size)
}

func (m *Memory) appendLocked(e Entry) {
	if m.size < m.capacity {
		m.buf[(m.head+m.size)%m.capacity] = e
		m.size++
		return
	}
	m.buf[m.head] = e
	m.head = (m.head + 1) % m.capacity
}

// Entries returns a chronological copy of the entries, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, m.size)
	for i := 0; i < m.size; i++ {
		out[i] = m.buf[(m.head+i)%m.capacity]
	}
	return out
}

// Reset drops every entry.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.buf = make([]Entry, m.capacity)
	m.head, m.size = 0, 0
	m.mu.Unlock()
	metrics.UpdateMemorySize(0)
}

// Similar returns up to limit successful shots resembling query. Seeds are
// considered first, then remembered shots predicted at SuccessThreshold or
// above, newest first. A candidate must use the same number of rails and a
// cue within 1 of the query.
func (m *Memory) Similar(query model.Shot, seeds []knowledge.SuccessfulPattern, limit int) []model.SimilarShot {
	if limit <= 0 {
		limit = DefaultLimit
	}
	contact := query.ContactLabel()
	out := make([]model.SimilarShot, 0, limit)

	for _, p := range seeds {
		if len(out) == limit {
			return out
		}
		if !near(query, p.Rails, p.Cue) {
			continue
		}
		out = append(out, model.SimilarShot{
			Contact:     p.Contact,
			Target:      p.Target,
			Cue:         p.Cue,
			Rails:       p.Rails,
			SuccessRate: p.SuccessRate,
			Similarity:  similarity(query, contact, p.Rails, p.Cue, p.Contact),
		})
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := m.size - 1; i >= 0 && len(out) < limit; i-- {
		e := m.buf[(m.head+i)%m.capacity]
		if e.PredictedSuccess < SuccessThreshold || !near(query, e.Shot.Rails, e.Shot.Cue) {
			continue
		}
		label := e.Shot.ContactLabel()
		out = append(out, model.SimilarShot{
			Contact:     label,
			Cue:         e.Shot.Cue,
			Rails:       e.Shot.Rails,
			SuccessRate: float64(e.PredictedSuccess),
			Similarity:  similarity(query, contact, e.Shot.Rails, e.Shot.Cue, label),
			FromMemory:  true,
		})
	}
	return out
}

func near(query model.Shot, rails int, cue float64) bool {
	return rails == query.Rails && math.Abs(cue-query.Cue) < 1
}

// similarity scores a candidate out of 90: rails +40, cue within 0.5 +30,
// same contact +20.
func similarity(query model.Shot, queryContact string, rails int, cue float64, contact string) int {
	score := 0
	if rails == query.Rails {
		score += 40
	}
	if math.Abs(cue-query.Cue) < 0.5 {
		score += 30
	}
	if contact == queryContact {
		score += 20
	}
	return score
}

type snapshot struct {
	Version  int     `json:"version"`
	Capacity int     `json:"capacity"`
	Entries  []Entry `json:"entries"`
}

// MarshalBinary encodes the entries, oldest first.
func (m *Memory) MarshalBinary() ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, Capacity: m.capacity, Entries: m.Entries()})
}

// UnmarshalBinary replaces the entries with the encoded ones. When the
// snapshot holds more entries than fit, the newest are kept.
func (m *Memory) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}
	for i, e := range snap.Entries {
		if err := e.Shot.Validate(); err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrCorruptSnapshot, i, err)
		}
	}

	entries := snap.Entries
	if len(entries) > m.capacity {
		entries = entries[len(entries)-m.capacity:]
	}

	m.mu.Lock()
	m.buf = make([]Entry, m.capacity)
	m.head, m.size = 0, 0
	for _, e := range entries {
		m.appendLocked(e)
	}
	size := m.size
	m.mu.Unlock()
	metrics.UpdateMemorySize(size)
	return nil
}
