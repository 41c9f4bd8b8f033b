package neural

import "errors"

// Sentinel kinds for neural model errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrEmptyDataset  = errors.New("empty dataset")
	ErrInvalidTarget = errors.New("target outside [0,1]")
	ErrCorruptModel  = errors.New("corrupt model")
	ErrInvalidEpochs = errors.New("invalid epoch count")
)
