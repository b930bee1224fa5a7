package jobs

import "context"

// Repo defines job persistence.
type Repo interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, j Job) error
	List(ctx context.Context, status string, limit, offset int) ([]Job, int, error)
	// FindByReference resolves a job by exact job code or by a reference
	// string matched against the id, title, or description.
	FindByReference(ctx context.Context, reference string) (Job, error)
}
