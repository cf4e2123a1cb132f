package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dub-pipeline-service/internal/entity"
)

type ArtifactRepository struct {
	pool *pgxpool.Pool
}

func NewArtifactRepository(pool *pgxpool.Pool) *ArtifactRepository {
	return &ArtifactRepository{pool: pool}
}

// Upsert writes a stage output under its deterministic (project, kind) key.
// A retried stage overwrites the previous payload and drops any approval.
func (r *ArtifactRepository) Upsert(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	const q = `
INSERT INTO artifacts (project_id, kind, payload)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, kind)
DO UPDATE SET payload=EXCLUDED.payload, approved=false, updated_at=now();
`
	_, err := r.pool.Exec(ctx, q, projectID, string(kind), payload)
	return err
}

func (r *ArtifactRepository) Get(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) (*entity.Artifact, error) {
	const q = `
SELECT project_id, kind, approved, payload, created_at, updated_at
FROM artifacts
WHERE project_id = $1 AND kind = $2;
`
	var (
		a       entity.Artifact
		k       string
		payload []byte
	)
	if err := r.pool.QueryRow(ctx, q, projectID, string(kind)).Scan(
		&a.ProjectID, &k, &a.Approved, &payload, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Kind = entity.ArtifactKind(k)
	a.Payload = json.RawMessage(payload)
	return &a, nil
}

func (r *ArtifactRepository) Approve(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) error {
	const q = `
UPDATE artifacts SET approved=true, updated_at=now()
WHERE project_id=$1 AND kind=$2;
`
	tag, err := r.pool.Exec(ctx, q, projectID, string(kind))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
