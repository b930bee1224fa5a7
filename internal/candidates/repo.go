package candidates

import "context"

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	Profession string
	Query      string // substring match over name and email
	Limit      int
	Offset     int
}

// Repo defines persistence operations for candidates.
//
// Implementations must assign CandidateNumber atomically at Create (no
// read-then-write), and must compare phones by their normalized form in
// FindByIdentity.
type Repo interface {
	Create(ctx context.Context, c Candidate) (Candidate, error)
	GetByID(ctx context.Context, id string) (Candidate, error)
	Update(ctx context.Context, c Candidate) error
	List(ctx context.Context, filter ListFilter) ([]Candidate, int, error)

	// ListAll returns up to limit candidates, most recently created first.
	// It feeds the naive CV search full scan.
	ListAll(ctx context.Context, limit int) ([]Candidate, error)

	// FindByIdentity returns the most recently created candidate matching
	// any of: normalized mobile, lower-cased email (placeholder domains
	// excluded by the caller), or exact national ID. Empty keys are skipped.
	FindByIdentity(ctx context.Context, normalizedMobile, emailLower, nationalID string) (Candidate, error)

	// WithIdentityLock runs fn while holding exclusive locks on the given
	// identity keys, serializing concurrent resolve-then-create sequences
	// for candidates that share a phone, email, or national ID. With no
	// keys fn runs unguarded.
	WithIdentityLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error

	// UpdateCVCache stores extracted CV text and the precomputed searchable
	// blob used by indexed search.
	UpdateCVCache(ctx context.Context, id string, cvText, searchText string) error

	// SearchIndexed ANDs terms against the precomputed search text and
	// returns candidates ordered by descending relevance, plus the total
	// match count. Only rows with non-empty search text participate.
	SearchIndexed(ctx context.Context, terms []string, limit, offset int) ([]Candidate, int, error)

	AddEvent(ctx context.Context, ev Event) error
	ListEvents(ctx context.Context, candidateID string) ([]Event, error)
}
