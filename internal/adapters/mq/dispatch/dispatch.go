// Package dispatch runs computational tasks on a worker pool and correlates
// each completion with its request by id.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/railshot/internal/adapters/mq/dedupe"
	"github.com/okian/railshot/internal/adapters/mq/queue"
	"github.com/okian/railshot/internal/adapters/mq/worker"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/pkg/logger"
	"github.com/okian/railshot/pkg/metrics"
)

// Defaults.
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
)

// Pending is an in-flight task. C receives exactly one response.
type Pending struct {
	ID string
	C  <-chan model.Response
	d  *Dispatcher
}

// Wait blocks for the response or until ctx is done, in which case the task
// is forgotten and ctx's error returned.
func (p *Pending) Wait(ctx context.Context) (model.Response, error) {
	select {
	case resp := <-p.C:
		return resp, nil
	case <-ctx.Done():
		p.d.Forget(p.ID)
		return model.Response{}, ctx.Err()
	}
}

// Dispatcher owns the request queue, the worker pool and the pending table.
type Dispatcher struct {
	workers   int
	queueSize int
	newID     func() string
	logger    logger.Logger
	replay    dedupe.Window

	queue *queue.InMemoryQueue
	pool  *worker.Pool

	mu      sync.Mutex
	pending map[string]chan model.Response
	closed  bool
}

// New creates a dispatcher running handler. Call Start before submitting.
func New(handler worker.Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
		newID:     uuid.NewString,
		pending:   make(map[string]chan model.Response),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("dispatch")
	}
	d.queue = queue.NewInMemoryQueue(queue.WithCapacity(d.queueSize))
	d.pool = worker.NewPool(d.workers, d.queue, handler, d)
	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	d.pool.Start(ctx)
	d.logger.Info(ctx, "dispatcher started",
		logger.Int("workers", d.pool.Size()),
		logger.Int("queue_size", d.queue.Capacity()),
	)
}

// Dispatch submits a task of the given kind under a generated id.
func (d *Dispatcher) Dispatch(ctx context.Context, kind model.Kind, payload model.Payload) (*Pending, error) { //nolint:gocritic // hugeParam
	payload.Kind = kind
	return d.Submit(ctx, model.Request{ID: d.newID(), Payload: payload})
}

// Submit enqueues req under its own id, generating one when empty. The
// payload is cloned so the caller may reuse it.
func (d *Dispatcher) Submit(ctx context.Context, req model.Request) (*Pending, error) { //nolint:gocritic // hugeParam
	if req.ID == "" {
		req.ID = d.newID()
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now()
	}
	req.Payload = req.Payload.Clone()

	ch := make(chan model.Response, 1)
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	if _, ok := d.pending[req.ID]; ok {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, req.ID)
	}
	if d.replay != nil && d.replay.SeenAndRecord(ctx, req.ID) {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s was submitted recently", ErrDuplicateID, req.ID)
	}
	d.pending[req.ID] = ch
	n := len(d.pending)
	d.mu.Unlock()
	metrics.UpdatePendingTasks(n)

	if err := d.queue.Enqueue(ctx, req); err != nil {
		d.Forget(req.ID)
		if d.replay != nil {
			d.replay.Unrecord(ctx, req.ID)
		}
		switch {
		case errors.Is(err, queue.ErrFull):
			return nil, fmt.Errorf("%w: %d queued", ErrBackpressure, d.queue.Capacity())
		case errors.Is(err, queue.ErrClosed):
			return nil, ErrClosed
		default:
			return nil, err
		}
	}
	return &Pending{ID: req.ID, C: ch, d: d}, nil
}

// Complete delivers resp to its pending entry and removes it. Responses with
// no pending entry are dropped.
func (d *Dispatcher) Complete(resp model.Response) { //nolint:gocritic // hugeParam
	d.mu.Lock()
	ch, ok := d.pending[resp.ID]
	delete(d.pending, resp.ID)
	n := len(d.pending)
	d.mu.Unlock()

	if !ok {
		metrics.RecordTaskDropped()
		d.logger.Debug(context.Background(), "dropping late completion", logger.String("id", resp.ID))
		return
	}
	metrics.UpdatePendingTasks(n)
	ch <- resp
}

// Forget removes the pending entry for id. It reports whether one existed.
func (d *Dispatcher) Forget(id string) bool {
	d.mu.Lock()
	_, ok := d.pending[id]
	delete(d.pending, id)
	n := len(d.pending)
	d.mu.Unlock()
	if ok {
		metrics.UpdatePendingTasks(n)
	}
	return ok
}

// InFlight returns the number of pending tasks.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stats is a snapshot of the dispatcher.
type Stats struct {
	Workers       int `json:"workers"`
	QueueLength   int `json:"queue_length"`
	QueueCapacity int `json:"queue_capacity"`
	InFlight      int `json:"in_flight"`
}

// Stats reports pool and queue occupancy.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Workers:       d.pool.Size(),
		QueueLength:   d.queue.Len(),
		QueueCapacity: d.queue.Capacity(),
		InFlight:      d.InFlight(),
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if err := d.queue.Close(); err != nil {
		return err
	}
	return d.pool.Wait(ctx)
}
