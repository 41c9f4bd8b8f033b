package geometry

import "github.com/okian/railshot/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTable sets the playing surface dimensions.
func WithTable(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.table = Table{Width: width, Height: height}
		}
	}
}

// WithLogger sets the logger used for degenerate geometry reports.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
