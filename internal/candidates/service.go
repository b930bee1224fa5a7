package candidates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ayalaw/clickjob/internal/cvparse"
	"github.com/ayalaw/clickjob/internal/extract"
	"github.com/ayalaw/clickjob/internal/shared/metrics"
	"github.com/ayalaw/clickjob/internal/shared/storage/object"
	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Service contains business logic for candidates.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Extractor *extract.Extractor
	Resolver  *Resolver
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore, extractor *extract.Extractor) *Service {
	return &Service{
		Repo:      repo,
		Store:     store,
		Extractor: extractor,
		Resolver:  &Resolver{Repo: repo},
	}
}

// CreateResult reports whether creation resolved to an existing profile.
type CreateResult struct {
	Candidate Candidate
	Merged    bool
}

// Create admits a candidate profile. Identity resolution runs first: when an
// existing profile matches by phone, email, or national ID, that profile is
// gap-filled and returned instead of a duplicate. Missing required fields get
// placeholders; an inbound record is always admitted.
//
// The resolve-then-insert pair runs under a store-level identity lock, so two
// simultaneous submissions for the same person (say an API create racing an
// inbound email) settle on one profile instead of two.
func (s *Service) Create(ctx context.Context, c Candidate) (CreateResult, error) {
	c.Email = strings.TrimSpace(c.Email)

	var res CreateResult
	err := s.Repo.WithIdentityLock(ctx, identityLockKeys(c), func(ctx context.Context) error {
		var err error
		res, err = s.resolveOrCreate(ctx, c)
		return err
	})
	return res, err
}

// identityLockKeys returns the keys Create must serialize on. A placeholder
// email never matches an existing profile and needs no lock.
func identityLockKeys(c Candidate) []string {
	var keys []string
	if mobile := NormalizePhone(c.Mobile); mobile != "" {
		keys = append(keys, "mobile:"+mobile)
	}
	if email := strings.ToLower(c.Email); email != "" && !IsPlaceholderEmail(email) {
		keys = append(keys, "email:"+email)
	}
	if c.NationalID != "" {
		keys = append(keys, "nid:"+c.NationalID)
	}
	return keys
}

func (s *Service) resolveOrCreate(ctx context.Context, c Candidate) (CreateResult, error) {
	existing, err := s.Resolver.FindExisting(ctx, c.Mobile, c.Email, c.NationalID)
	if err == nil {
		merged := mergeGaps(&existing, c)
		if merged {
			if err := s.Repo.Update(ctx, existing); err != nil {
				return CreateResult{}, fmt.Errorf("merge candidate: %w", err)
			}
		}
		metrics.IncCandidateMerged()
		return CreateResult{Candidate: existing, Merged: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return CreateResult{}, err
	}

	c.ID = uuid.NewString()
	applyPlaceholders(&c)
	if c.Source == "" {
		c.Source = SourceManual
	}

	created, err := s.Repo.Create(ctx, c)
	if err != nil {
		return CreateResult{}, err
	}
	metrics.IncCandidateCreated()
	telemetry.Info("candidate.created", map[string]any{
		"candidate_id":     created.ID,
		"candidate_number": created.CandidateNumber,
		"source":           created.Source,
	})
	return CreateResult{Candidate: created}, nil
}

// Get returns a candidate by ID.
func (s *Service) Get(ctx context.Context, id string) (Candidate, error) {
	if id == "" {
		return Candidate{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// Update overwrites mutable fields.
func (s *Service) Update(ctx context.Context, c Candidate) error {
	if c.ID == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.Repo.Update(ctx, c)
}

// List returns candidates matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Candidate, int, error) {
	return s.Repo.List(ctx, filter)
}

// Events returns a candidate's history.
func (s *Service) Events(ctx context.Context, id string) ([]Event, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListEvents(ctx, id)
}

// AddEvent appends a history event.
func (s *Service) AddEvent(ctx context.Context, candidateID, eventType, description string) error {
	return s.Repo.AddEvent(ctx, Event{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		EventType:   eventType,
		Description: description,
	})
}

// UploadCV stores a CV file for a candidate, extracts its text and fields,
// fills profile gaps from the extracted fields, and caches the searchable
// text. Extraction failure never blocks the upload: the file is kept and the
// profile stays as entered.
func (s *Service) UploadCV(ctx context.Context, id, fileName string, r io.Reader) (Candidate, cvparse.Fields, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Candidate{}, cvparse.Fields{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Candidate{}, cvparse.Fields{}, fmt.Errorf("read cv upload: %w", err)
	}

	storageKey, _, _, err := s.Store.Save(ctx, id, fileName, bytes.NewReader(data))
	if err != nil {
		return Candidate{}, cvparse.Fields{}, fmt.Errorf("store cv file: %w", err)
	}
	c.CVFileKey = storageKey

	text := s.Extractor.Extract(ctx, data, fileName)
	fields := cvparse.ExtractFields(text)
	fillFromFields(&c, fields)

	if err := s.Repo.Update(ctx, c); err != nil {
		return Candidate{}, cvparse.Fields{}, err
	}
	c.CVText = text
	c.SearchText = BuildSearchText(c)
	if err := s.Repo.UpdateCVCache(ctx, c.ID, text, c.SearchText); err != nil {
		return Candidate{}, cvparse.Fields{}, err
	}

	if err := s.AddEvent(ctx, c.ID, "cv_uploaded", fmt.Sprintf("קובץ קורות חיים %s", fileName)); err != nil {
		telemetry.Error("candidate.cv_event_failed", map[string]any{
			"candidate_id": c.ID,
			"error":        err.Error(),
		})
	}
	return c, fields, nil
}

// ParseCV extracts text and fields from an uploaded file without persisting
// anything. Used for form pre-fill before a candidate exists.
func (s *Service) ParseCV(ctx context.Context, fileName string, r io.Reader) (cvparse.Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cvparse.Fields{}, fmt.Errorf("read cv upload: %w", err)
	}
	text := s.Extractor.Extract(ctx, data, fileName)
	return cvparse.ExtractFields(text), nil
}

// CVTextFor returns the cached CV text, extracting from the stored file when
// no cache exists. The extraction result is returned, not persisted.
func (s *Service) CVTextFor(ctx context.Context, c Candidate) string {
	if c.CVText != "" {
		return c.CVText
	}
	if c.CVFileKey == "" {
		return ""
	}
	body, err := s.Store.Open(ctx, c.CVFileKey)
	if err != nil {
		telemetry.Error("candidate.cv_open_failed", map[string]any{
			"candidate_id": c.ID,
			"error":        err.Error(),
		})
		return ""
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	return s.Extractor.Extract(ctx, data, c.CVFileKey)
}

// BuildSearchText concatenates the candidate's name, profession, and CV text
// into the precomputed searchable blob.
func BuildSearchText(c Candidate) string {
	parts := []string{c.FullName(), c.Profession, c.CVText}
	var kept []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

// applyPlaceholders fills required fields so incomplete inbound records are
// still admitted.
func applyPlaceholders(c *Candidate) {
	if c.City == "" {
		c.City = PlaceholderCity
	}
	if c.Email == "" {
		c.Email = fmt.Sprintf("candidate-%s@%s", c.ID[:8], PlaceholderEmailDomain)
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
}

// mergeGaps copies incoming values into empty fields of existing. It reports
// whether anything changed. Email is never overwritten.
func mergeGaps(existing *Candidate, incoming Candidate) bool {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&existing.FirstName, incoming.FirstName)
	fill(&existing.LastName, incoming.LastName)
	fill(&existing.Mobile, incoming.Mobile)
	fill(&existing.Landline, incoming.Landline)
	fill(&existing.Phone2, incoming.Phone2)
	fill(&existing.NationalID, incoming.NationalID)
	fill(&existing.City, incoming.City)
	fill(&existing.Street, incoming.Street)
	fill(&existing.ZipCode, incoming.ZipCode)
	fill(&existing.Profession, incoming.Profession)
	if incoming.Notes != "" {
		existing.Notes = AppendNotes(existing.Notes, incoming.Notes)
		changed = true
	}
	return changed
}

// fillFromFields copies extracted CV fields into empty profile fields.
func fillFromFields(c *Candidate, f cvparse.Fields) {
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&c.FirstName, f.FirstName)
	fill(&c.LastName, f.LastName)
	fill(&c.Email, f.Email)
	fill(&c.Mobile, f.Mobile)
	fill(&c.Landline, f.Landline)
	fill(&c.Phone2, f.Phone2)
	fill(&c.NationalID, f.NationalID)
	fill(&c.City, f.City)
	fill(&c.Street, f.Street)
	fill(&c.ZipCode, f.ZipCode)
	fill(&c.Gender, f.Gender)
	fill(&c.MaritalStatus, f.MaritalStatus)
	fill(&c.DrivingLicense, f.DrivingLicense)
	fill(&c.Profession, f.Profession)
	fill(&c.ExperienceYears, f.ExperienceYears)
	fill(&c.Achievements, f.Achievements)
}

// AppendNotes appends a block to existing notes, never overwriting.
func AppendNotes(existing, block string) string {
	block = strings.TrimSpace(block)
	if block == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return block
	}
	return existing + "\n---\n" + block
}
