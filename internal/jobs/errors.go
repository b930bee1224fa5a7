package jobs

import "errors"

var (
	// ErrNotFound reports a missing job.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidInput reports invalid job input.
	ErrInvalidInput = errors.New("invalid job input")
)
