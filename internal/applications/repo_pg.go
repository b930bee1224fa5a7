package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres. The UNIQUE (candidate_id, job_id)
// constraint enforces one application per candidate per job; a violation is
// translated into a DuplicateError holding the current row.
type PGRepo struct {
	DB *sql.DB
}

const applicationColumns = `
id, candidate_id, job_id, status, COALESCE(note, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.CandidateID, &a.JobID, &a.Status, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Application{}, err
	}
	return a, nil
}

// Create inserts an application. A unique violation resolves the existing
// record and returns it inside a DuplicateError.
func (r *PGRepo) Create(ctx context.Context, a Application) (Application, error) {
	const query = `
INSERT INTO applications (id, candidate_id, job_id, status, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING created_at, updated_at`
	status := a.Status
	if status == "" {
		status = StatusSubmitted
	}
	err := r.DB.QueryRowContext(ctx, query,
		a.ID, a.CandidateID, a.JobID, status, nullableString(a.Note),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			existing, lookupErr := r.GetByPair(ctx, a.CandidateID, a.JobID)
			if lookupErr != nil {
				return Application{}, fmt.Errorf("resolve duplicate application: %w", lookupErr)
			}
			return Application{}, &DuplicateError{Existing: existing}
		}
		return Application{}, fmt.Errorf("create application: %w", err)
	}
	a.Status = status
	return a, nil
}

// GetByID fetches an application by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 LIMIT 1`
	a, err := scanApplication(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return a, nil
}

// GetByPair fetches the application for a (candidate, job) pair.
func (r *PGRepo) GetByPair(ctx context.Context, candidateID, jobID string) (Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE candidate_id = $1 AND job_id = $2 LIMIT 1`
	a, err := scanApplication(r.DB.QueryRowContext(ctx, query, candidateID, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return a, nil
}

// ListByCandidate returns a candidate's applications, newest first.
func (r *PGRepo) ListByCandidate(ctx context.Context, candidateID string) ([]Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE candidate_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, candidateID)
}

// ListByJob returns a job's applications, newest first.
func (r *PGRepo) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, jobID)
}

func (r *PGRepo) list(ctx context.Context, query string, arg any) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus moves an application along the pipeline.
func (r *PGRepo) UpdateStatus(ctx context.Context, id, status, note string) error {
	const query = `
UPDATE applications SET status = $2, note = COALESCE($3, note), updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status, nullableString(note))
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
