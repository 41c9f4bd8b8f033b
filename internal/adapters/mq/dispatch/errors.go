package dispatch

import (
	"errors"

	"github.com/okian/railshot/internal/adapters/mq/worker"
)

// Sentinel kinds for dispatch errors.
var (
	ErrUnknownKind  = errors.New("unknown task kind")
	ErrBackpressure = errors.New("dispatch queue full")
	ErrDuplicateID  = errors.New("duplicate in-flight task id")
	ErrClosed       = errors.New("dispatcher closed")
	ErrTaskPanic    = worker.ErrTaskPanic
)
