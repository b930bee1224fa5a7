package applications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Service contains business logic for applications.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Submit creates an application for a candidate on a job. A duplicate pair
// returns a DuplicateError carrying the existing record.
func (s *Service) Submit(ctx context.Context, candidateID, jobID, note string) (Application, error) {
	if candidateID == "" || jobID == "" {
		return Application{}, fmt.Errorf("%w: candidate and job are required", ErrInvalidInput)
	}
	created, err := s.Repo.Create(ctx, Application{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      StatusSubmitted,
		Note:        note,
	})
	if err != nil {
		return Application{}, err
	}
	telemetry.Info("application.submitted", map[string]any{
		"application_id": created.ID,
		"candidate_id":   candidateID,
		"job_id":         jobID,
	})
	return created, nil
}

// Get returns an application by ID.
func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	if id == "" {
		return Application{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// ListByCandidate returns a candidate's applications.
func (s *Service) ListByCandidate(ctx context.Context, candidateID string) ([]Application, error) {
	if candidateID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByCandidate(ctx, candidateID)
}

// ListByJob returns a job's applications.
func (s *Service) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	if jobID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByJob(ctx, jobID)
}

// UpdateStatus moves an application along the pipeline.
func (s *Service) UpdateStatus(ctx context.Context, id, status, note string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if !validStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, status, note)
}
