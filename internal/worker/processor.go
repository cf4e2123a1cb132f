package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/repository/postgresql"
	"dub-pipeline-service/internal/service"
)

// ErrAborted signals that the job was externally settled (cancellation or a
// competing worker) while the stage was running. Not a failure.
var ErrAborted = errors.New("job no longer active")

// JobStore is the read/claim slice of the job repository workers use. All
// other job mutation goes through the orchestrator.
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
}

// Orchestrator is the report-back port (implementation:
// service.Orchestrator).
type Orchestrator interface {
	OnStageProgress(ctx context.Context, jobID uuid.UUID, progress int) error
	OnStageCompleted(ctx context.Context, jobID uuid.UUID, output json.RawMessage) error
	OnStageFailed(ctx context.Context, jobID uuid.UUID, kind service.FailureKind, msg string) error
}

// ProgressFunc reports stage progress. It returns ErrAborted when the job
// has been settled externally; runners must stop when they see it.
type ProgressFunc func(progress int) error

// StageRunner executes one stage's work for one job.
type StageRunner interface {
	Stage() entity.Stage
	Run(ctx context.Context, job *entity.Job, report ProgressFunc) (json.RawMessage, error)
}

// Processor drives one queue message through the worker execution contract:
// idempotency guard, claim, run, report back.
type Processor struct {
	jobs    JobStore
	orch    Orchestrator
	runners map[entity.Stage]StageRunner
	log     *logrus.Logger
}

func NewProcessor(jobs JobStore, orch Orchestrator, log *logrus.Logger, runners ...StageRunner) *Processor {
	m := make(map[entity.Stage]StageRunner, len(runners))
	for _, r := range runners {
		m[r.Stage()] = r
	}
	return &Processor{jobs: jobs, orch: orch, runners: m, log: log}
}

func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()

	id, err := uuid.Parse(jobID)
	if err != nil {
		p.log.WithField("job_id", jobID).WithError(err).Error("bad job id on queue")
		return err
	}

	j, err := p.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// idempotency guard: a duplicate delivery of a settled job is a no-op
	if j.Status.Terminal() {
		p.log.WithFields(logrus.Fields{
			"job_id": id, "stage": j.Stage, "status": j.Status,
		}).Info("duplicate delivery ignored")
		return nil
	}

	if err := p.jobs.MarkProcessing(ctx, id); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			// another worker claimed it between load and claim
			p.log.WithFields(logrus.Fields{"job_id": id, "stage": j.Stage}).
				Info("claim lost, skipping")
			return nil
		}
		return err
	}

	runner, ok := p.runners[j.Stage]
	if !ok {
		return p.orch.OnStageFailed(ctx, id, service.FailureFatal,
			fmt.Sprintf("no runner registered for stage %s", j.Stage))
	}

	report := func(progress int) error {
		if err := p.orch.OnStageProgress(ctx, id, progress); err != nil {
			if errors.Is(err, service.ErrInvalidProgress) {
				// the job was settled under us (cancel, concurrent settle)
				return ErrAborted
			}
			// progress is best-effort; a store hiccup must not kill the run
			p.log.WithFields(logrus.Fields{"job_id": id, "progress": progress}).
				WithError(err).Warn("progress report failed")
		}
		return nil
	}

	p.log.WithFields(logrus.Fields{
		"job_id": id, "project_id": j.ProjectID, "stage": j.Stage, "attempt": j.Attempt,
	}).Info("stage started")

	out, runErr := runner.Run(ctx, j, report)
	if runErr != nil {
		if errors.Is(runErr, ErrAborted) {
			p.log.WithFields(logrus.Fields{"job_id": id, "stage": j.Stage}).
				Info("stage aborted: job settled externally")
			return nil
		}

		kind := service.FailureFatal
		if adapter.IsRetryable(runErr) {
			kind = service.FailureRetryable
		}

		p.log.WithFields(logrus.Fields{
			"job_id": id, "stage": j.Stage, "kind": kind.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(runErr).Error("stage failed")

		return p.orch.OnStageFailed(ctx, id, kind, runErr.Error())
	}

	p.log.WithFields(logrus.Fields{
		"job_id": id, "stage": j.Stage,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("stage completed")

	return p.orch.OnStageCompleted(ctx, id, out)
}
