package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2 // invalid flags or an invalid shot
)

// ExitError carries a process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// ExitCode extracts the exit code from an error. Invalid shots and epoch
// counts map to ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, model.ErrValidation) || errors.Is(err, neural.ErrInvalidEpochs) {
		return ExitUsage
	}
	return ExitFailure
}

type printer struct {
	format string
	w      io.Writer
}

// print writes v as indented JSON, or calls text in text mode.
func (p printer) print(v any, text func(w io.Writer)) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}
