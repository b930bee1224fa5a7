package applications

import "context"

// Repo defines application persistence. Create returns a DuplicateError when
// the (candidate, job) pair already exists.
type Repo interface {
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	GetByPair(ctx context.Context, candidateID, jobID string) (Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id, status, note string) error
}
