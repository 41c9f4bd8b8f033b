package neural

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithSeed sets the seed used for weight initialization.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.seed = seed
	}
}

// WithLearningRate sets the gradient descent step. It is independent of
// the heuristic scorer's rate.
func WithLearningRate(rate float64) Option {
	return func(m *Model) {
		if rate > 0 {
			m.learningRate = rate
		}
	}
}

// WithEpochs sets the epoch count used when Train is called with zero epochs.
func WithEpochs(epochs int) Option {
	return func(m *Model) {
		if epochs > 0 {
			m.epochs = epochs
		}
	}
}
