package domain

import "errors"

// Cross-cutting sentinel errors. ErrNotFound covers both missing rows
// and identity mismatches (a caller touching another user's resource
// gets not-found, never forbidden). ErrInvalidInput covers malformed
// or out-of-range request data.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
