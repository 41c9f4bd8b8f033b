// Package worker runs dispatched requests against a handler and reports the
// outcome to a sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Handler executes the payload of a request.
type Handler interface {
	Handle(ctx context.Context, p model.Payload) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, p model.Payload) (any, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, p model.Payload) (any, error) { //nolint:gocritic // hugeParam
	return f(ctx, p)
}

// Sink receives every response produced by a worker.
type Sink interface {
	Complete(resp model.Response)
}

// Source is where workers read requests from.
type Source interface {
	Dequeue(ctx context.Context) <-chan model.Request
}

// Worker processes requests one at a time.
type Worker struct {
	source  Source
	handler Handler
	sink    Sink
	name    string
	logger  logger.Logger
	active  *atomic.Int64

	done chan struct{}
}

// New creates a worker.
func New(source Source, handler Handler, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		source:  source,
		handler: handler,
		sink:    sink,
		name:    "worker",
		done:    make(chan struct{}),
		active:  new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes requests until the source closes or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for req := range w.source.Dequeue(ctx) {
		w.active.Add(1)
		metrics.UpdateWorkerActiveCount(int(w.active.Load()))
		resp := w.Process(ctx, req)
		w.active.Add(-1)
		metrics.UpdateWorkerActiveCount(int(w.active.Load()))
		w.sink.Complete(resp)
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Process runs one request and builds its response. A panicking handler
// yields a failed response wrapping ErrTaskPanic.
func (w *Worker) Process(ctx context.Context, req model.Request) model.Response { //nolint:gocritic // hugeParam
	start := time.Now()
	result, err := w.invoke(ctx, req.Payload)
	done := time.Now()

	resp := model.Response{
		ID:               req.ID,
		SubmittedAt:      req.SubmittedAt,
		CompletedAt:      done,
		ProcessingTimeMS: float64(done.Sub(start).Microseconds()) / 1000,
		Success:          err == nil,
	}
	if err != nil {
		resp.Err = err
		resp.Error = err.Error()
		metrics.RecordErrorByComponent("worker", string(req.Payload.Kind))
		w.logger.Warn(ctx, "task failed",
			logger.String("id", req.ID),
			logger.String("kind", string(req.Payload.Kind)),
			logger.Error(err),
		)
	} else {
		resp.Result = result
	}
	metrics.RecordTaskCompleted(string(req.Payload.Kind), resp.Success, resp.ProcessingTimeMS)
	return resp
}

func (w *Worker) invoke(ctx context.Context, p model.Payload) (result any, err error) { //nolint:gocritic // hugeParam
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "task panic", logger.Any("panic", r), logger.String("stack", string(debug.Stack())))
			metrics.RecordErrorByType("task_panic", "high")
			result, err = nil, fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return w.handler.Handle(ctx, p)
}

// Pool runs a fixed number of workers over one source.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
	wg      sync.WaitGroup
}

// NewPool creates count workers. A non-positive count uses runtime.NumCPU().
func NewPool(count int, source Source, handler Handler, sink Sink) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*Worker, count),
		logger:  logger.Get().Named("worker-pool"),
	}
	active := new(atomic.Int64)
	for i := range p.workers {
		w := New(source, handler, sink, WithName("worker-"+strconv.Itoa(i)))
		w.active = active
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(count)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has stopped or ctx expires. Workers stop
// once their source is closed and drained.
func (p *Pool) Wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}
