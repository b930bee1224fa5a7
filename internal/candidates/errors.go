package candidates

import "errors"

var (
	// ErrNotFound indicates no candidate matched the lookup.
	ErrNotFound = errors.New("candidate not found")
	// ErrInvalidInput indicates a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
