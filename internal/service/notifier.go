package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dub-pipeline-service/internal/entity"
)

const (
	EventJobQueued        = "job:queued"
	EventJobProgress      = "job:progress"
	EventJobCompleted     = "job:completed"
	EventJobFailed        = "job:failed"
	EventProjectCompleted = "project:completed"
	EventProjectFailed    = "project:failed"
)

// Event is what the status push channel carries. Poll clients read the same
// fields from GET /projects/{id}/status.
type Event struct {
	Type      string               `json:"type"`
	ProjectID uuid.UUID            `json:"project_id"`
	JobID     uuid.UUID            `json:"job_id,omitempty"`
	Stage     entity.Stage         `json:"stage,omitempty"`
	Status    entity.ProjectStatus `json:"status,omitempty"`
	Progress  int                  `json:"progress,omitempty"`
	Error     string               `json:"error,omitempty"`
	WillRetry bool                 `json:"will_retry,omitempty"`
	At        time.Time            `json:"at"`
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// RedisNotifier publishes events on a firehose channel and a per-project
// channel so status subscribers can filter server-side.
type RedisNotifier struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisNotifier(rdb *redis.Client, keyPrefix string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, prefix: keyPrefix}
}

func (n *RedisNotifier) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, n.prefix+":events", b).Err(); err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.prefix+":events:"+ev.ProjectID.String(), b).Err()
}
