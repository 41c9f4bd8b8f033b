package memory

import "errors"

// Sentinel kinds for pattern memory errors.
var (
	ErrCorruptSnapshot = errors.New("corrupt memory snapshot")
)
