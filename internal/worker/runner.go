package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"dub-pipeline-service/internal/entity"
)

// ArtifactReader lets runners load the previous stage's output. Runners
// only read artifacts; writing them is the orchestrator's job.
type ArtifactReader interface {
	Get(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) (*entity.Artifact, error)
}

func decodeInput(job *entity.Job, v any) error {
	if err := json.Unmarshal(job.Input, v); err != nil {
		return fmt.Errorf("job %s input: %w", job.ID, err)
	}
	return nil
}

func encodeOutput(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode stage output: %w", err)
	}
	return b, nil
}
