package applications

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing application.
	ErrNotFound = errors.New("application not found")
	// ErrInvalidInput reports invalid application input.
	ErrInvalidInput = errors.New("invalid application input")
	// ErrDuplicate reports that the candidate already applied to the job.
	ErrDuplicate = errors.New("application already exists")
)

// DuplicateError carries the existing record when a duplicate submission is
// rejected. It unwraps to ErrDuplicate.
type DuplicateError struct {
	Existing Application
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("candidate %s already applied to job %s", e.Existing.CandidateID, e.Existing.JobID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }
