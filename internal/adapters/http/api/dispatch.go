package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/domain/model"
)

// DispatchHandler submits tasks to the worker pool and waits for them within
// a deadline.
type DispatchHandler struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(dispatcher Dispatcher, timeout time.Duration) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, timeout: timeout}
}

// RequestIDHeader lets a client choose the task id. Reusing a recent id is
// rejected with 409.
const RequestIDHeader = "X-Request-ID"

// HandleDispatch handles POST /dispatch. The body is a task payload; the
// reply is the task response. A task still running at the deadline is
// forgotten and reported as a timeout.
func (h *DispatchHandler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	var p model.Payload
	if err := decode(w, r, "api.dispatch", &p); err != nil {
		writeFailure(w, err)
		return
	}
	if p.Kind == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind("api.dispatch", ErrBadRequest, nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		pending *dispatch.Pending
		err     error
	)
	if id := r.Header.Get(RequestIDHeader); id != "" {
		pending, err = h.dispatcher.Submit(ctx, model.Request{ID: id, Payload: p})
	} else {
		pending, err = h.dispatcher.Dispatch(ctx, p.Kind, p)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp, err := pending.Wait(ctx)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if !resp.Success {
		status, _ := classify(resp.Err)
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
