package dispatch

import (
	"github.com/okian/railshot/internal/adapters/mq/dedupe"
	"github.com/okian/railshot/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the number of pool workers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize sets the bound of the request queue.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithIDGenerator overrides the generator used by Dispatch.
func WithIDGenerator(gen func() string) Option {
	return func(d *Dispatcher) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// WithReplayWindow rejects ids reused within the last n submissions, not
// just those still in flight. Zero disables the window.
func WithReplayWindow(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.replay = dedupe.NewWindow(dedupe.WithCapacity(n))
		}
	}
}
