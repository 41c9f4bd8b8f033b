package memory

import "time"

// Option applies a configuration option to the Memory.
type Option func(*Memory)

// WithCapacity sets the maximum number of entries kept.
func WithCapacity(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithClock sets the time source used by Record.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}
