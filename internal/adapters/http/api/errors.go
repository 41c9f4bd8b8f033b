package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/railshot/internal/adapters/mq/dispatch"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

func wrapKind(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "invalid_shot"
	case errors.Is(err, dispatch.ErrUnknownKind):
		return http.StatusBadRequest, "unknown_kind"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, neural.ErrEmptyDataset),
		errors.Is(err, neural.ErrInvalidTarget),
		errors.Is(err, neural.ErrInvalidEpochs):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, dispatch.ErrDuplicateID):
		return http.StatusConflict, "duplicate_id"
	case errors.Is(err, dispatch.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, dispatch.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
