package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// PGRepo implements Repo using Postgres. Job codes come from the job_code_seq
// sequence inside the INSERT.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `
id, job_code, title,
COALESCE(description, ''), COALESCE(requirements, ''),
COALESCE(client_name, ''), COALESCE(location, ''), status,
created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.JobCode, &j.Title,
		&j.Description, &j.Requirements,
		&j.ClientName, &j.Location, &j.Status,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	return j, nil
}

// Create inserts a job. The database assigns the job code.
func (r *PGRepo) Create(ctx context.Context, j Job) (Job, error) {
	const query = `
INSERT INTO jobs (id, title, description, requirements, client_name, location, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING job_code, created_at, updated_at`
	status := j.Status
	if status == "" {
		status = StatusOpen
	}
	err := r.DB.QueryRowContext(ctx, query,
		j.ID, j.Title, nullableString(j.Description), nullableString(j.Requirements),
		nullableString(j.ClientName), nullableString(j.Location), status,
	).Scan(&j.JobCode, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return Job{}, fmt.Errorf("create job: %w", err)
	}
	j.Status = status
	return j, nil
}

// GetByID fetches a job by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 LIMIT 1`
	j, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

// Update overwrites mutable job fields.
func (r *PGRepo) Update(ctx context.Context, j Job) error {
	const query = `
UPDATE jobs SET
    title = $2, description = $3, requirements = $4,
    client_name = $5, location = $6, status = $7, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		j.ID, j.Title, nullableString(j.Description), nullableString(j.Requirements),
		nullableString(j.ClientName), nullableString(j.Location), j.Status,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
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

// List returns jobs, optionally filtered by status, newest first.
func (r *PGRepo) List(ctx context.Context, status string, limit, offset int) ([]Job, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	countArgs := []any{}
	if status != "" {
		where = " WHERE status = $1"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT count(*) FROM jobs"+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	args := append(countArgs, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, len(args)-1, len(args))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

// FindByReference resolves a job by exact code when the reference is numeric,
// otherwise by id equality or a title/description substring. Newest wins.
func (r *PGRepo) FindByReference(ctx context.Context, reference string) (Job, error) {
	if reference == "" {
		return Job{}, ErrNotFound
	}
	if code, err := strconv.ParseInt(reference, 10, 64); err == nil {
		query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_code = $1 LIMIT 1`
		j, err := scanJob(r.DB.QueryRowContext(ctx, query, code))
		if err == nil {
			return j, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Job{}, err
		}
	}

	query := `
SELECT ` + jobColumns + `
FROM jobs
WHERE id::text = $1 OR title ILIKE $2 OR description ILIKE $2
ORDER BY created_at DESC
LIMIT 1`
	j, err := scanJob(r.DB.QueryRowContext(ctx, query, reference, "%"+reference+"%"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
