package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dub-pipeline-service/internal/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `
id, project_id, stage, status, attempt, progress, input, output,
error_message, created_at, updated_at, started_at, completed_at`

// Create inserts a pending job. The partial unique index
// jobs_one_active_per_stage turns a duplicate active job into
// ErrActiveJobExists instead of a second row.
func (r *JobRepository) Create(ctx context.Context, projectID uuid.UUID, stage entity.Stage, attempt int, input json.RawMessage) (uuid.UUID, error) {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	const q = `
INSERT INTO jobs (project_id, stage, status, attempt, input)
VALUES ($1, $2, 'pending', $3, $4)
RETURNING id;
`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, q, projectID, string(stage), attempt, input).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrActiveJobExists
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1;
`
	return scanJob(r.pool.QueryRow(ctx, q, id))
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		j      entity.Job
		stage  string
		status string
		input  []byte
		output []byte
	)
	if err := row.Scan(
		&j.ID,
		&j.ProjectID,
		&stage,
		&status,
		&j.Attempt,
		&j.Progress,
		&input,
		&output,
		&j.ErrorMessage,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.StartedAt,
		&j.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	j.Stage = entity.Stage(stage)
	j.Status = entity.JobStatus(status)
	j.Input = json.RawMessage(input)
	if output != nil {
		j.Output = json.RawMessage(output)
	}
	return &j, nil
}

// MarkProcessing claims a pending job. A second delivery of the same message
// matches no row and gets ErrConflict.
func (r *JobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE jobs SET status='processing', started_at=now(), updated_at=now()
WHERE id=$1 AND status='pending';
`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateProgress only moves progress forward on a processing job.
// Decreasing values and updates to settled jobs match no row.
func (r *JobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	const q = `
UPDATE jobs SET progress=$2, updated_at=now()
WHERE id=$1 AND status='processing' AND progress <= $2;
`
	tag, err := r.pool.Exec(ctx, q, id, progress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, output json.RawMessage) error {
	if len(output) == 0 {
		output = json.RawMessage(`{}`)
	}
	const q = `
UPDATE jobs
SET status='completed', progress=100, output=$2, error_message=NULL,
    completed_at=now(), updated_at=now()
WHERE id=$1 AND status='processing';
`
	tag, err := r.pool.Exec(ctx, q, id, output)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errText string) error {
	const q = `
UPDATE jobs
SET status='failed', error_message=$2, completed_at=now(), updated_at=now()
WHERE id=$1 AND status IN ('pending','processing');
`
	tag, err := r.pool.Exec(ctx, q, id, errText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// ActiveForProject returns the newest pending or processing job, if any.
func (r *JobRepository) ActiveForProject(ctx context.Context, projectID uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT ` + jobColumns + `
FROM jobs
WHERE project_id = $1 AND status IN ('pending','processing')
ORDER BY created_at DESC
LIMIT 1;
`
	return scanJob(r.pool.QueryRow(ctx, q, projectID))
}

// LatestFailed returns the most recent failed job, used by administrative
// reopen to find the stage and input to retry from.
func (r *JobRepository) LatestFailed(ctx context.Context, projectID uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT ` + jobColumns + `
FROM jobs
WHERE project_id = $1 AND status = 'failed'
ORDER BY created_at DESC
LIMIT 1;
`
	return scanJob(r.pool.QueryRow(ctx, q, projectID))
}

func (r *JobRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Job, error) {
	const q = `
SELECT ` + jobColumns + `
FROM jobs
WHERE project_id = $1
ORDER BY created_at ASC;
`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// FailActive fails every pending or processing job of a project. Used by
// cancellation; in-flight workers observe the flip on their next status check.
func (r *JobRepository) FailActive(ctx context.Context, projectID uuid.UUID, errText string) (int64, error) {
	const q = `
UPDATE jobs
SET status='failed', error_message=$2, completed_at=now(), updated_at=now()
WHERE project_id=$1 AND status IN ('pending','processing');
`
	tag, err := r.pool.Exec(ctx, q, projectID, errText)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
