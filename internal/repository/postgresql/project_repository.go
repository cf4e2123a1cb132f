package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dub-pipeline-service/internal/entity"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `
id, status, source_language, target_language, video_key, audio_key,
output_video_key, output_video_url, current_stage_error,
created_at, updated_at, completed_at, expires_at`

func (r *ProjectRepository) Create(ctx context.Context, sourceLang, targetLang, videoKey string) (uuid.UUID, error) {
	const q = `
INSERT INTO projects (status, source_language, target_language, video_key)
VALUES ('uploaded', $1, $2, $3)
RETURNING id;
`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, q, sourceLang, targetLang, videoKey).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE id = $1 AND deleted_at IS NULL;
`
	return scanProject(r.pool.QueryRow(ctx, q, id))
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	var status string
	if err := row.Scan(
		&p.ID,
		&status,
		&p.SourceLanguage,
		&p.TargetLanguage,
		&p.VideoKey,
		&p.AudioKey,
		&p.OutputVideoKey,
		&p.OutputVideoURL,
		&p.CurrentStageError,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CompletedAt,
		&p.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = entity.ProjectStatus(status)
	return &p, nil
}

// TransitionStatus moves a project from one exact status to another. The
// status guard in the WHERE clause is what serializes concurrent advancement:
// the second writer matches no row and gets ErrConflict.
func (r *ProjectRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.ProjectStatus) error {
	const q = `
UPDATE projects SET status=$3, updated_at=now()
WHERE id=$1 AND status=$2 AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *ProjectRepository) SetAudioKey(ctx context.Context, id uuid.UUID, audioKey string) error {
	const q = `UPDATE projects SET audio_key=$2, updated_at=now() WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id, audioKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks a muxing project completed with its output location and the
// purge deadline for the rendered video.
func (r *ProjectRepository) Complete(ctx context.Context, id uuid.UUID, outputKey, outputURL string, ttl time.Duration) error {
	const q = `
UPDATE projects
SET status='completed', output_video_key=$2, output_video_url=$3,
    current_stage_error=NULL, completed_at=now(), expires_at=now()+$4,
    updated_at=now()
WHERE id=$1 AND status='muxing' AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, id, outputKey, outputURL, ttl)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// MarkFailed sends a non-terminal project to the failed sink.
func (r *ProjectRepository) MarkFailed(ctx context.Context, id uuid.UUID, stageError string) error {
	const q = `
UPDATE projects SET status='failed', current_stage_error=$2, updated_at=now()
WHERE id=$1 AND status NOT IN ('completed','failed') AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, id, stageError)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// ReopenFailed is the administrative retry path: it re-opens a failed project
// into the given stage's processing status and clears the stage error.
func (r *ProjectRepository) ReopenFailed(ctx context.Context, id uuid.UUID, to entity.ProjectStatus) error {
	const q = `
UPDATE projects SET status=$2, current_stage_error=NULL, updated_at=now()
WHERE id=$1 AND status='failed' AND deleted_at IS NULL;
`
	tag, err := r.pool.Exec(ctx, q, id, string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// PurgeExpired soft-deletes completed projects past their expiry and returns
// them so the caller can remove the stored media.
func (r *ProjectRepository) PurgeExpired(ctx context.Context, limit int) ([]entity.Project, error) {
	const q = `
UPDATE projects SET deleted_at=now(), updated_at=now()
WHERE id IN (
    SELECT id FROM projects
    WHERE deleted_at IS NULL AND expires_at IS NOT NULL AND expires_at < now()
    LIMIT $1
)
RETURNING ` + projectColumns + `;
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
