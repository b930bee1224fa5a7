package jobs

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured and in tests. Job codes are assigned under the mutex,
// mirroring the sequence guarantee of the Postgres implementation.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]Job
	order    map[string]int // id -> insertion sequence, newest highest
	nextCode int64
	nextSeq  int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string]Job),
		order:    make(map[string]int),
		nextCode: 1000,
	}
}

// Create stores a job and assigns the next job code.
func (r *MemoryRepo) Create(ctx context.Context, j Job) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	j.JobCode = r.nextCode
	r.nextCode++
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.Status == "" {
		j.Status = StatusOpen
	}
	r.data[j.ID] = j
	r.order[j.ID] = r.nextSeq
	r.nextSeq++
	return j, nil
}

// GetByID returns a job by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.data[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

// Update overwrites mutable fields of an existing job.
func (r *MemoryRepo) Update(ctx context.Context, j Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[j.ID]
	if !ok {
		return ErrNotFound
	}
	j.JobCode = existing.JobCode
	j.CreatedAt = existing.CreatedAt
	j.UpdatedAt = time.Now().UTC()
	r.data[j.ID] = j
	return nil
}

// List filters by status and paginates, newest first.
func (r *MemoryRepo) List(ctx context.Context, status string, limit, offset int) ([]Job, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Job
	for _, j := range r.data {
		if status != "" && j.Status != status {
			continue
		}
		matched = append(matched, j)
	}
	sort.Slice(matched, func(a, b int) bool {
		return r.order[matched[a].ID] > r.order[matched[b].ID]
	})

	total := len(matched)
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// FindByReference resolves a job by exact code, id, or title/description
// substring. Newest match wins.
func (r *MemoryRepo) FindByReference(ctx context.Context, reference string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	if reference == "" {
		return Job{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, hasCode := int64(0), false
	if parsed, err := strconv.ParseInt(reference, 10, 64); err == nil {
		code, hasCode = parsed, true
	}

	lowerRef := strings.ToLower(reference)
	var best Job
	bestSeq := -1
	for _, j := range r.data {
		match := (hasCode && j.JobCode == code) ||
			j.ID == reference ||
			strings.Contains(strings.ToLower(j.Title), lowerRef) ||
			strings.Contains(strings.ToLower(j.Description), lowerRef)
		if !match {
			continue
		}
		if hasCode && j.JobCode == code {
			return j, nil
		}
		if seq := r.order[j.ID]; seq > bestSeq {
			best, bestSeq = j, seq
		}
	}
	if bestSeq < 0 {
		return Job{}, ErrNotFound
	}
	return best, nil
}
