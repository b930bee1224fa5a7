package candidates

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured and in tests. Number assignment is serialized by the mutex,
// mirroring the sequence guarantee of the Postgres implementation.
type MemoryRepo struct {
	mu         sync.RWMutex
	identityMu sync.Mutex // serializes resolve-then-create sequences
	data       map[string]Candidate
	events     map[string][]Event
	order      map[string]int // id -> insertion sequence, newest highest
	nextNumber int64
	nextSeq    int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:       make(map[string]Candidate),
		events:     make(map[string][]Event),
		order:      make(map[string]int),
		nextNumber: 100,
	}
}

// Create stores a candidate and assigns the next candidate number.
func (r *MemoryRepo) Create(ctx context.Context, c Candidate) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c.CandidateNumber = r.nextNumber
	r.nextNumber++
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = StatusNew
	}
	r.data[c.ID] = c
	r.order[c.ID] = r.nextSeq
	r.nextSeq++
	return c, nil
}

// GetByID returns a candidate by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return c, nil
}

// Update overwrites mutable fields of an existing candidate.
func (r *MemoryRepo) Update(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CandidateNumber = existing.CandidateNumber
	c.CreatedAt = existing.CreatedAt
	c.CVText = existing.CVText
	c.SearchText = existing.SearchText
	c.UpdatedAt = time.Now().UTC()
	r.data[c.ID] = c
	return nil
}

// List filters and paginates, newest first.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Candidate, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Candidate
	for _, c := range r.data {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Profession != "" && !containsFold(c.Profession, filter.Profession) {
			continue
		}
		if filter.Query != "" &&
			!containsFold(c.FirstName, filter.Query) &&
			!containsFold(c.LastName, filter.Query) &&
			!containsFold(c.Email, filter.Query) {
			continue
		}
		matched = append(matched, c)
	}
	r.sortNewestFirst(matched)

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
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

// ListAll returns up to limit candidates, newest first.
func (r *MemoryRepo) ListAll(ctx context.Context, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, c)
	}
	r.sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindByIdentity matches by normalized mobile, lower email, or national ID.
func (r *MemoryRepo) FindByIdentity(ctx context.Context, normalizedMobile, emailLower, nationalID string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Candidate
	for _, c := range r.data {
		switch {
		case normalizedMobile != "" && NormalizePhone(c.Mobile) == normalizedMobile:
		case emailLower != "" && strings.ToLower(c.Email) == emailLower && !IsPlaceholderEmail(c.Email):
		case nationalID != "" && c.NationalID == nationalID:
		default:
			continue
		}
		matched = append(matched, c)
	}
	if len(matched) == 0 {
		return Candidate{}, ErrNotFound
	}
	r.sortNewestFirst(matched)
	return matched[0], nil
}

// WithIdentityLock serializes fn against other identity-keyed work. The
// single mutex is coarser than the per-key advisory locks of the Postgres
// implementation but gives the same guarantee.
func (r *MemoryRepo) WithIdentityLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return fn(ctx)
	}
	r.identityMu.Lock()
	defer r.identityMu.Unlock()
	return fn(ctx)
}

// UpdateCVCache stores extracted text and the searchable blob.
func (r *MemoryRepo) UpdateCVCache(ctx context.Context, id string, cvText, searchText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	c.CVText = cvText
	c.SearchText = searchText
	c.UpdatedAt = time.Now().UTC()
	r.data[id] = c
	return nil
}

// SearchIndexed ANDs terms over the search text. Ranking approximates the
// Postgres implementation by total term hit count.
func (r *MemoryRepo) SearchIndexed(ctx context.Context, terms []string, limit, offset int) ([]Candidate, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if len(terms) == 0 {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type ranked struct {
		c    Candidate
		hits int
	}
	var matched []ranked
	for _, c := range r.data {
		if c.SearchText == "" {
			continue
		}
		lower := strings.ToLower(c.SearchText)
		hits := 0
		all := true
		for _, term := range terms {
			n := strings.Count(lower, strings.ToLower(term))
			if n == 0 {
				all = false
				break
			}
			hits += n
		}
		if all {
			matched = append(matched, ranked{c: c, hits: hits})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].hits != matched[j].hits {
			return matched[i].hits > matched[j].hits
		}
		return r.order[matched[i].c.ID] > r.order[matched[j].c.ID]
	})

	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]Candidate, 0, end-offset)
	for _, m := range matched[offset:end] {
		out = append(out, m.c)
	}
	return out, total, nil
}

// AddEvent appends a history event.
func (r *MemoryRepo) AddEvent(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[ev.CandidateID]; !ok {
		return ErrNotFound
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	r.events[ev.CandidateID] = append(r.events[ev.CandidateID], ev)
	return nil
}

// ListEvents returns a candidate's history, newest first.
func (r *MemoryRepo) ListEvents(ctx context.Context, candidateID string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	evs := r.events[candidateID]
	out := make([]Event, len(evs))
	copy(out, evs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) sortNewestFirst(list []Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		return r.order[list[i].ID] > r.order[list[j].ID]
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
