package knowledge

import "errors"

// Sentinel kinds for knowledge base errors.
var (
	ErrInvalid = errors.New("invalid knowledge base")
)
