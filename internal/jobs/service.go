package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Service contains business logic for jobs.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create opens a new job. The job code is assigned by the store.
func (s *Service) Create(ctx context.Context, j Job) (Job, error) {
	if strings.TrimSpace(j.Title) == "" {
		return Job{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	j.ID = uuid.NewString()
	created, err := s.Repo.Create(ctx, j)
	if err != nil {
		return Job{}, err
	}
	telemetry.Info("job.created", map[string]any{
		"job_id":   created.ID,
		"job_code": created.JobCode,
	})
	return created, nil
}

// Get returns a job by ID.
func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	if id == "" {
		return Job{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// Update overwrites mutable fields.
func (s *Service) Update(ctx context.Context, j Job) error {
	if j.ID == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return s.Repo.Update(ctx, j)
}

// List returns jobs, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]Job, int, error) {
	return s.Repo.List(ctx, status, limit, offset)
}

// Resolve finds the job an inbound reference points at.
func (s *Service) Resolve(ctx context.Context, reference string) (Job, error) {
	return s.Repo.FindByReference(ctx, strings.TrimSpace(reference))
}
