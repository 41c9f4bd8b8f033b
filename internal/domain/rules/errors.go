package rules

import "errors"

// Sentinel kinds for rule registry errors.
var (
	ErrEmptyKey     = errors.New("empty predicate key")
	ErrNilPredicate = errors.New("nil predicate")
)
