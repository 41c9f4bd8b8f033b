package dedupe

// Option applies a configuration option to a Window.
type Option func(*window)

// WithCapacity sets how many of the most recent ids are remembered.
func WithCapacity(n int) Option {
	return func(w *window) {
		if n > 0 {
			w.capacity = n
		}
	}
}
