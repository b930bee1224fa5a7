package applications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured and in tests. Pair uniqueness is enforced under the mutex.
type MemoryRepo struct {
	mu      sync.RWMutex
	data    map[string]Application
	byPair  map[[2]string]string // (candidate, job) -> application id
	order   map[string]int
	nextSeq int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:   make(map[string]Application),
		byPair: make(map[[2]string]string),
		order:  make(map[string]int),
	}
}

// Create stores an application, rejecting a duplicate pair with the existing
// record.
func (r *MemoryRepo) Create(ctx context.Context, a Application) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := [2]string{a.CandidateID, a.JobID}
	if existingID, ok := r.byPair[pair]; ok {
		return Application{}, &DuplicateError{Existing: r.data[existingID]}
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = StatusSubmitted
	}
	r.data[a.ID] = a
	r.byPair[pair] = a.ID
	r.order[a.ID] = r.nextSeq
	r.nextSeq++
	return a, nil
}

// GetByID returns an application by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

// GetByPair returns the application for a (candidate, job) pair.
func (r *MemoryRepo) GetByPair(ctx context.Context, candidateID, jobID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[[2]string{candidateID, jobID}]
	if !ok {
		return Application{}, ErrNotFound
	}
	return r.data[id], nil
}

// ListByCandidate returns a candidate's applications, newest first.
func (r *MemoryRepo) ListByCandidate(ctx context.Context, candidateID string) ([]Application, error) {
	return r.filter(ctx, func(a Application) bool { return a.CandidateID == candidateID })
}

// ListByJob returns a job's applications, newest first.
func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	return r.filter(ctx, func(a Application) bool { return a.JobID == jobID })
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Application) bool) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Application
	for _, a := range r.data {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	return out, nil
}

// UpdateStatus moves an application along the pipeline.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status, note string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if note != "" {
		a.Note = note
	}
	a.UpdatedAt = time.Now().UTC()
	r.data[id] = a
	return nil
}
