package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)
