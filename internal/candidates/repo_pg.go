package candidates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres. Candidate numbers come from the
// candidate_number_seq sequence inside the INSERT, and phone matching uses
// the mobile_normalized generated column, so both invariants hold under
// concurrent writers.
type PGRepo struct {
	DB *sql.DB
}

const candidateColumns = `
id, candidate_number,
COALESCE(first_name, ''), COALESCE(last_name, ''), email,
COALESCE(mobile, ''), COALESCE(landline, ''), COALESCE(phone2, ''),
COALESCE(national_id, ''), COALESCE(city, ''), COALESCE(street, ''),
COALESCE(house_number, ''), COALESCE(zip_code, ''), COALESCE(gender, ''),
COALESCE(marital_status, ''), COALESCE(driving_license, ''),
COALESCE(profession, ''), COALESCE(experience_years, ''),
COALESCE(achievements, ''), COALESCE(source, ''), status,
COALESCE(rating, 0), COALESCE(notes, ''), tags,
COALESCE(cv_file_key, ''), COALESCE(cv_text, ''), COALESCE(search_text, ''),
created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var tags string
	err := row.Scan(
		&c.ID, &c.CandidateNumber,
		&c.FirstName, &c.LastName, &c.Email,
		&c.Mobile, &c.Landline, &c.Phone2,
		&c.NationalID, &c.City, &c.Street,
		&c.HouseNumber, &c.ZipCode, &c.Gender,
		&c.MaritalStatus, &c.DrivingLicense,
		&c.Profession, &c.ExperienceYears,
		&c.Achievements, &c.Source, &c.Status,
		&c.Rating, &c.Notes, &tags,
		&c.CVFileKey, &c.CVText, &c.SearchText,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Candidate{}, err
	}
	c.Tags = splitTags(tags)
	return c, nil
}

func joinTags(tags []string) string {
	var kept []string
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Create inserts a candidate. The database assigns the candidate number.
func (r *PGRepo) Create(ctx context.Context, c Candidate) (Candidate, error) {
	const query = `
INSERT INTO candidates (
    id, first_name, last_name, email, mobile, landline, phone2,
    national_id, city, street, house_number, zip_code, gender,
    marital_status, driving_license, profession, experience_years,
    achievements, source, status, rating, notes, tags,
    cv_file_key, cv_text, search_text, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
    $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, now(), now()
)
RETURNING candidate_number, created_at, updated_at`

	status := c.Status
	if status == "" {
		status = StatusNew
	}

	err := r.DB.QueryRowContext(ctx, query,
		c.ID,
		nullableString(c.FirstName), nullableString(c.LastName), c.Email,
		nullableString(c.Mobile), nullableString(c.Landline), nullableString(c.Phone2),
		nullableString(c.NationalID), nullableString(c.City), nullableString(c.Street),
		nullableString(c.HouseNumber), nullableString(c.ZipCode), nullableString(c.Gender),
		nullableString(c.MaritalStatus), nullableString(c.DrivingLicense),
		nullableString(c.Profession), nullableString(c.ExperienceYears),
		nullableString(c.Achievements), nullableString(c.Source), status,
		c.Rating, nullableString(c.Notes), joinTags(c.Tags),
		nullableString(c.CVFileKey), nullableString(c.CVText), nullableString(c.SearchText),
	).Scan(&c.CandidateNumber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Candidate{}, fmt.Errorf("create candidate: %w", err)
	}
	c.Status = status
	return c, nil
}

// GetByID fetches a candidate by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 LIMIT 1`
	c, err := scanCandidate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, err
	}
	return c, nil
}

// Update overwrites mutable candidate fields.
func (r *PGRepo) Update(ctx context.Context, c Candidate) error {
	const query = `
UPDATE candidates SET
    first_name = $2, last_name = $3, email = $4, mobile = $5,
    landline = $6, phone2 = $7, national_id = $8, city = $9, street = $10,
    house_number = $11, zip_code = $12, gender = $13, marital_status = $14,
    driving_license = $15, profession = $16, experience_years = $17,
    achievements = $18, source = $19, status = $20, rating = $21,
    notes = $22, tags = $23, cv_file_key = $24, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		nullableString(c.FirstName), nullableString(c.LastName), c.Email,
		nullableString(c.Mobile), nullableString(c.Landline), nullableString(c.Phone2),
		nullableString(c.NationalID), nullableString(c.City), nullableString(c.Street),
		nullableString(c.HouseNumber), nullableString(c.ZipCode), nullableString(c.Gender),
		nullableString(c.MaritalStatus), nullableString(c.DrivingLicense),
		nullableString(c.Profession), nullableString(c.ExperienceYears),
		nullableString(c.Achievements), nullableString(c.Source), c.Status,
		c.Rating, nullableString(c.Notes), joinTags(c.Tags),
		nullableString(c.CVFileKey),
	)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns candidates matching the filter, newest first, plus the total.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Candidate, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Profession != "" {
		args = append(args, "%"+filter.Profession+"%")
		conds = append(conds, fmt.Sprintf("profession ILIKE $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT count(*) FROM candidates" + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT %s FROM candidates%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		candidateColumns, where, len(args)-1, len(args))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ListAll returns up to limit candidates, most recent first.
func (r *PGRepo) ListAll(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list all candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindByIdentity matches by normalized mobile, lower-cased email, or exact
// national ID; most recently created wins. The phone comparison happens on
// the mobile_normalized column so it holds for data written by any client.
func (r *PGRepo) FindByIdentity(ctx context.Context, normalizedMobile, emailLower, nationalID string) (Candidate, error) {
	query := `
SELECT ` + candidateColumns + `
FROM candidates
WHERE ($1 <> '' AND mobile_normalized = $1)
   OR ($2 <> '' AND lower(email) = $2 AND lower(email) NOT LIKE '%@' || $4)
   OR ($3 <> '' AND national_id = $3)
ORDER BY created_at DESC
LIMIT 1`
	c, err := scanCandidate(r.DB.QueryRowContext(ctx, query,
		normalizedMobile, emailLower, nationalID, PlaceholderEmailDomain))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, err
	}
	return c, nil
}

// WithIdentityLock serializes fn against other holders of the same keys via
// transaction-scoped advisory locks; keys are sorted so two callers sharing
// several keys acquire them in the same order. fn runs on the pool as usual
// and the locks release when the wrapping transaction ends.
func (r *PGRepo) WithIdentityLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if len(keys) == 0 {
		return fn(ctx)
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin identity lock: %w", err)
	}
	defer tx.Rollback()

	for _, key := range sorted {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("acquire identity lock %q: %w", key, err)
		}
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateCVCache stores extracted CV text and the searchable blob.
func (r *PGRepo) UpdateCVCache(ctx context.Context, id string, cvText, searchText string) error {
	const query = `
UPDATE candidates SET cv_text = $2, search_text = $3, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, nullableString(cvText), nullableString(searchText))
	if err != nil {
		return fmt.Errorf("update cv cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchIndexed runs the AND-combined term query over the precomputed search
// vector, ranked by ts_rank descending.
func (r *PGRepo) SearchIndexed(ctx context.Context, terms []string, limit, offset int) ([]Candidate, int, error) {
	if len(terms) == 0 {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	// plainto_tsquery ANDs all terms and neutralizes query syntax.
	queryText := strings.Join(terms, " ")

	var total int
	const countQuery = `
SELECT count(*)
FROM candidates
WHERE search_text IS NOT NULL
  AND search_vector @@ plainto_tsquery('simple', $1)`
	if err := r.DB.QueryRowContext(ctx, countQuery, queryText).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count indexed search: %w", err)
	}

	query := `
SELECT ` + candidateColumns + `
FROM candidates
WHERE search_text IS NOT NULL
  AND search_vector @@ plainto_tsquery('simple', $1)
ORDER BY ts_rank(search_vector, plainto_tsquery('simple', $1)) DESC, created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, queryText, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("indexed search: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// AddEvent appends a history event.
func (r *PGRepo) AddEvent(ctx context.Context, ev Event) error {
	const query = `
INSERT INTO candidate_events (id, candidate_id, event_type, description, created_at)
VALUES ($1, $2, $3, $4, $5)`
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query, ev.ID, ev.CandidateID, ev.EventType, ev.Description, createdAt)
	if err != nil {
		return fmt.Errorf("add candidate event: %w", err)
	}
	return nil
}

// ListEvents returns a candidate's history, newest first.
func (r *PGRepo) ListEvents(ctx context.Context, candidateID string) ([]Event, error) {
	const query = `
SELECT id, candidate_id, event_type, description, created_at
FROM candidate_events
WHERE candidate_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list candidate events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.EventType, &ev.Description, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
