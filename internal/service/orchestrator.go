package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/repository/postgresql"
)

// ProjectStore is the orchestrator's port onto project rows
// (implementation: postgresql.ProjectRepository).
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.ProjectStatus) error
	SetAudioKey(ctx context.Context, id uuid.UUID, audioKey string) error
	Complete(ctx context.Context, id uuid.UUID, outputKey, outputURL string, ttl time.Duration) error
	MarkFailed(ctx context.Context, id uuid.UUID, stageError string) error
	ReopenFailed(ctx context.Context, id uuid.UUID, to entity.ProjectStatus) error
}

type JobStore interface {
	Create(ctx context.Context, projectID uuid.UUID, stage entity.Stage, attempt int, input json.RawMessage) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, output json.RawMessage) error
	MarkFailed(ctx context.Context, id uuid.UUID, errText string) error
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error
	ActiveForProject(ctx context.Context, projectID uuid.UUID) (*entity.Job, error)
	LatestFailed(ctx context.Context, projectID uuid.UUID) (*entity.Job, error)
	FailActive(ctx context.Context, projectID uuid.UUID, errText string) (int64, error)
}

type ArtifactStore interface {
	Upsert(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind, payload json.RawMessage) error
	Get(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) (*entity.Artifact, error)
	Approve(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) error
}

// JobQueue is the small enqueue-only port the orchestrator needs.
type JobQueue interface {
	Enqueue(ctx context.Context, stage entity.Stage, jobID string) error
	EnqueueDelayed(ctx context.Context, stage entity.Stage, jobID string, delay time.Duration) error
}

// Orchestrator owns every project and job state transition. Workers report
// outcomes here and never write project rows themselves; the status guards in
// the store plus the one-active-job index make each transition an atomic
// read-modify-write.
type Orchestrator struct {
	projects  ProjectStore
	jobs      JobStore
	artifacts ArtifactStore
	queue     JobQueue
	notifier  Notifier
	retry     RetryPolicy
	outputTTL time.Duration
	watermark bool
	log       *logrus.Logger
}

type OrchestratorOptions struct {
	Retry RetryPolicy

	// OutputTTL is how long the rendered video is kept before purge.
	OutputTTL time.Duration

	// Watermark burns an overlay into the muxed output.
	Watermark bool
}

func NewOrchestrator(
	projects ProjectStore,
	jobs JobStore,
	artifacts ArtifactStore,
	queue JobQueue,
	notifier Notifier,
	log *logrus.Logger,
	opts OrchestratorOptions,
) *Orchestrator {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.OutputTTL <= 0 {
		opts.OutputTTL = 7 * 24 * time.Hour
	}
	return &Orchestrator{
		projects:  projects,
		jobs:      jobs,
		artifacts: artifacts,
		queue:     queue,
		notifier:  notifier,
		retry:     opts.Retry,
		outputTTL: opts.OutputTTL,
		watermark: opts.Watermark,
		log:       log,
	}
}

// Advance inspects the project status and, if a stage is eligible to run,
// creates its job and enqueues it. Review gates must be approved first.
func (o *Orchestrator) Advance(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	p, err := o.projects.GetByID(ctx, projectID)
	if err != nil {
		return uuid.Nil, err
	}
	if p.Status.Terminal() {
		return uuid.Nil, ErrProjectTerminal
	}

	var (
		stage entity.Stage
		input any
	)
	switch p.Status {
	case entity.ProjectUploaded:
		stage = entity.StageSTT
		input = STTInput{VideoKey: p.VideoKey, SourceLanguage: p.SourceLanguage}
	case entity.ProjectSTTReview:
		if err := o.requireApproved(ctx, projectID, entity.ArtifactTranscript); err != nil {
			return uuid.Nil, err
		}
		stage = entity.StageTranslation
		input = TranslationInput{SourceLanguage: p.SourceLanguage, TargetLanguage: p.TargetLanguage}
	case entity.ProjectTranslationReview:
		if err := o.requireApproved(ctx, projectID, entity.ArtifactTranslation); err != nil {
			return uuid.Nil, err
		}
		stage = entity.StageTTS
		input = TTSInput{TargetLanguage: p.TargetLanguage}
	default:
		// a stage is already in flight for every other non-terminal status
		return uuid.Nil, ErrJobConflict
	}

	return o.startStage(ctx, p, stage, mustJSON(input), 1)
}

func (o *Orchestrator) requireApproved(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) error {
	a, err := o.artifacts.Get(ctx, projectID, kind)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return ErrStageNotReady
		}
		return err
	}
	if !a.Approved {
		return ErrStageNotReady
	}
	return nil
}

// startStage creates the job row, moves the project into the stage's
// processing status and enqueues the message. The unique index on active
// jobs and the status guard together reject concurrent duplicate triggers.
func (o *Orchestrator) startStage(ctx context.Context, p *entity.Project, stage entity.Stage, input json.RawMessage, attempt int) (uuid.UUID, error) {
	jobID, err := o.jobs.Create(ctx, p.ID, stage, attempt, input)
	if err != nil {
		if errors.Is(err, postgresql.ErrActiveJobExists) {
			return uuid.Nil, ErrJobConflict
		}
		return uuid.Nil, err
	}

	if err := o.projects.TransitionStatus(ctx, p.ID, p.Status, stage.ProcessingStatus()); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			// lost the race to a concurrent transition; settle the orphan job
			_ = o.jobs.MarkFailed(ctx, jobID, "superseded by concurrent transition")
			o.log.WithFields(logrus.Fields{
				"project_id": p.ID, "stage": stage, "from": p.Status,
			}).Error("concurrent project transition rejected")
			return uuid.Nil, ErrJobConflict
		}
		return uuid.Nil, err
	}

	if err := o.queue.Enqueue(ctx, stage, jobID.String()); err != nil {
		return uuid.Nil, err
	}

	o.publish(ctx, Event{
		Type:      EventJobQueued,
		ProjectID: p.ID,
		JobID:     jobID,
		Stage:     stage,
		Status:    stage.ProcessingStatus(),
	})

	o.log.WithFields(logrus.Fields{
		"project_id": p.ID, "job_id": jobID, "stage": stage, "attempt": attempt,
	}).Info("stage enqueued")

	return jobID, nil
}

// OnStageProgress records monotonic job progress. Project status is not
// touched.
func (o *Orchestrator) OnStageProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}

	j, err := o.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := o.jobs.UpdateProgress(ctx, jobID, progress); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			return ErrInvalidProgress
		}
		return err
	}

	o.publish(ctx, Event{
		Type:      EventJobProgress,
		ProjectID: j.ProjectID,
		JobID:     jobID,
		Stage:     j.Stage,
		Progress:  progress,
	})
	return nil
}

// OnStageCompleted settles a finished job, persists its artifact, and either
// parks the project at the next review gate or starts the next stage.
// A duplicate delivery completing the same job twice is a no-op.
func (o *Orchestrator) OnStageCompleted(ctx context.Context, jobID uuid.UUID, output json.RawMessage) error {
	j, err := o.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := o.jobs.MarkCompleted(ctx, jobID, output); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			o.log.WithFields(logrus.Fields{"job_id": jobID, "stage": j.Stage}).
				Info("duplicate completion ignored")
			return nil
		}
		return err
	}

	p, err := o.projects.GetByID(ctx, j.ProjectID)
	if err != nil {
		return err
	}

	switch j.Stage {
	case entity.StageSTT:
		var out STTOutput
		if err := json.Unmarshal(output, &out); err != nil {
			return fmt.Errorf("stt output: %w", err)
		}
		if err := o.artifacts.Upsert(ctx, p.ID, entity.ArtifactTranscript, out.Transcript); err != nil {
			return err
		}
		if err := o.projects.SetAudioKey(ctx, p.ID, out.AudioKey); err != nil {
			return err
		}
		o.enterReview(ctx, p, entity.ProjectSTTProcessing, entity.ProjectSTTReview)

	case entity.StageTranslation:
		var out TranslationOutput
		if err := json.Unmarshal(output, &out); err != nil {
			return fmt.Errorf("translation output: %w", err)
		}
		if err := o.artifacts.Upsert(ctx, p.ID, entity.ArtifactTranslation, out.Translation); err != nil {
			return err
		}
		o.enterReview(ctx, p, entity.ProjectTranslating, entity.ProjectTranslationReview)

	case entity.StageTTS:
		var out TTSOutput
		if err := json.Unmarshal(output, &out); err != nil {
			return fmt.Errorf("tts output: %w", err)
		}
		if err := o.artifacts.Upsert(ctx, p.ID, entity.ArtifactDubbedAudio, out.DubbedAudio); err != nil {
			return err
		}
		// no review after synthesis; muxing starts automatically
		in := MuxingInput{
			VideoKey:       p.VideoKey,
			DubbedAudioKey: out.DubbedAudioKey,
			Watermark:      o.watermark,
		}
		if _, err := o.startStage(ctx, p, entity.StageMuxing, mustJSON(in), 1); err != nil {
			return err
		}

	case entity.StageMuxing:
		var out MuxingOutput
		if err := json.Unmarshal(output, &out); err != nil {
			return fmt.Errorf("muxing output: %w", err)
		}
		if err := o.projects.Complete(ctx, p.ID, out.OutputVideoKey, out.OutputVideoURL, o.outputTTL); err != nil {
			if errors.Is(err, postgresql.ErrConflict) {
				o.log.WithField("project_id", p.ID).Warn("completion skipped: project no longer muxing")
				return nil
			}
			return err
		}
		o.publish(ctx, Event{
			Type:      EventProjectCompleted,
			ProjectID: p.ID,
			Status:    entity.ProjectCompleted,
		})

	default:
		return fmt.Errorf("unknown stage: %s", j.Stage)
	}

	o.publish(ctx, Event{
		Type:      EventJobCompleted,
		ProjectID: j.ProjectID,
		JobID:     jobID,
		Stage:     j.Stage,
		Progress:  100,
	})
	return nil
}

func (o *Orchestrator) enterReview(ctx context.Context, p *entity.Project, from, to entity.ProjectStatus) {
	if err := o.projects.TransitionStatus(ctx, p.ID, from, to); err != nil {
		// project was cancelled or failed while the stage finished; the job
		// output is kept, the status stands
		o.log.WithFields(logrus.Fields{
			"project_id": p.ID, "from": from, "to": to, "error": err,
		}).Warn("review transition skipped")
	}
}

// OnStageFailed settles a failed job and applies the retry policy: a
// retryable failure below the attempt limit gets a fresh job with the same
// input after backoff; anything else fails the project.
func (o *Orchestrator) OnStageFailed(ctx context.Context, jobID uuid.UUID, kind FailureKind, msg string) error {
	j, err := o.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := o.jobs.MarkFailed(ctx, jobID, msg); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			o.log.WithField("job_id", jobID).Info("duplicate failure report ignored")
			return nil
		}
		return err
	}

	if kind == FailureRetryable && j.Attempt < o.retry.MaxFor(j.Stage) {
		delay := o.retry.Delay(j.Attempt)
		retryID, err := o.jobs.Create(ctx, j.ProjectID, j.Stage, j.Attempt+1, j.Input)
		if err != nil {
			return err
		}
		if err := o.queue.EnqueueDelayed(ctx, j.Stage, retryID.String(), delay); err != nil {
			return err
		}

		o.log.WithFields(logrus.Fields{
			"project_id": j.ProjectID, "job_id": jobID, "retry_job_id": retryID,
			"stage": j.Stage, "attempt": j.Attempt, "delay": delay, "error": msg,
		}).Warn("stage failed, retry scheduled")

		o.publish(ctx, Event{
			Type:      EventJobFailed,
			ProjectID: j.ProjectID,
			JobID:     jobID,
			Stage:     j.Stage,
			Error:     msg,
			WillRetry: true,
		})
		return nil
	}

	if err := o.projects.MarkFailed(ctx, j.ProjectID, msg); err != nil && !errors.Is(err, postgresql.ErrConflict) {
		return err
	}

	o.log.WithFields(logrus.Fields{
		"project_id": j.ProjectID, "job_id": jobID, "stage": j.Stage,
		"kind": kind.String(), "attempt": j.Attempt, "error": msg,
	}).Error("stage failed, project failed")

	o.publish(ctx, Event{
		Type:      EventProjectFailed,
		ProjectID: j.ProjectID,
		JobID:     jobID,
		Stage:     j.Stage,
		Status:    entity.ProjectFailed,
		Error:     msg,
	})
	return nil
}

// Approve records human approval of a review artifact and advances the
// pipeline.
func (o *Orchestrator) Approve(ctx context.Context, projectID uuid.UUID, stage entity.Stage) (uuid.UUID, error) {
	kind, ok := stage.ArtifactKind()
	if !ok || (stage != entity.StageSTT && stage != entity.StageTranslation) {
		return uuid.Nil, fmt.Errorf("stage %s has no review gate", stage)
	}
	if err := o.artifacts.Approve(ctx, projectID, kind); err != nil {
		return uuid.Nil, err
	}
	return o.Advance(ctx, projectID)
}

// Cancel fails the project and its active jobs. In-flight workers observe
// the flip on their next status check and abort.
func (o *Orchestrator) Cancel(ctx context.Context, projectID uuid.UUID, reason string) error {
	if reason == "" {
		reason = "cancelled by operator"
	}
	if err := o.projects.MarkFailed(ctx, projectID, reason); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			return ErrProjectTerminal
		}
		return err
	}
	n, err := o.jobs.FailActive(ctx, projectID, reason)
	if err != nil {
		return err
	}
	o.log.WithFields(logrus.Fields{"project_id": projectID, "jobs_failed": n}).
		Info("project cancelled")
	o.publish(ctx, Event{
		Type:      EventProjectFailed,
		ProjectID: projectID,
		Status:    entity.ProjectFailed,
		Error:     reason,
	})
	return nil
}

// Reopen is the administrative retry for a failed project: it re-opens the
// project at the stage that failed and runs that stage again on a fresh job
// row with the original input. Old job rows stay as the audit trail.
func (o *Orchestrator) Reopen(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	p, err := o.projects.GetByID(ctx, projectID)
	if err != nil {
		return uuid.Nil, err
	}
	if p.Status != entity.ProjectFailed {
		return uuid.Nil, ErrNotReopenable
	}

	last, err := o.jobs.LatestFailed(ctx, projectID)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return uuid.Nil, ErrNotReopenable
		}
		return uuid.Nil, err
	}

	if err := o.projects.ReopenFailed(ctx, projectID, last.Stage.ProcessingStatus()); err != nil {
		if errors.Is(err, postgresql.ErrConflict) {
			return uuid.Nil, ErrNotReopenable
		}
		return uuid.Nil, err
	}

	jobID, err := o.jobs.Create(ctx, projectID, last.Stage, 1, last.Input)
	if err != nil {
		if errors.Is(err, postgresql.ErrActiveJobExists) {
			return uuid.Nil, ErrJobConflict
		}
		return uuid.Nil, err
	}
	if err := o.queue.Enqueue(ctx, last.Stage, jobID.String()); err != nil {
		return uuid.Nil, err
	}

	o.log.WithFields(logrus.Fields{
		"project_id": projectID, "job_id": jobID, "stage": last.Stage,
	}).Info("project reopened")

	o.publish(ctx, Event{
		Type:      EventJobQueued,
		ProjectID: projectID,
		JobID:     jobID,
		Stage:     last.Stage,
		Status:    last.Stage.ProcessingStatus(),
	})
	return jobID, nil
}

// StatusView is the poll shape of a project.
type StatusView struct {
	ProjectID   uuid.UUID            `json:"project_id"`
	Status      entity.ProjectStatus `json:"status"`
	Stage       entity.Stage         `json:"stage,omitempty"`
	Progress    int                  `json:"progress"`
	Error       *string              `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	OutputURL   *string              `json:"output_video_url,omitempty"`
}

func (o *Orchestrator) Status(ctx context.Context, projectID uuid.UUID) (*StatusView, error) {
	p, err := o.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	v := &StatusView{
		ProjectID:   p.ID,
		Status:      p.Status,
		Error:       p.CurrentStageError,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
		ExpiresAt:   p.ExpiresAt,
		OutputURL:   p.OutputVideoURL,
	}
	if p.Status == entity.ProjectCompleted {
		v.Progress = 100
		return v, nil
	}
	if stage, ok := p.Status.StageOf(); ok {
		v.Stage = stage
		if j, err := o.jobs.ActiveForProject(ctx, projectID); err == nil {
			v.Progress = j.Progress
		} else if !errors.Is(err, postgresql.ErrNotFound) {
			return nil, err
		}
	}
	return v, nil
}

func (o *Orchestrator) publish(ctx context.Context, ev Event) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Publish(ctx, ev); err != nil {
		o.log.WithField("type", ev.Type).WithError(err).Warn("event publish failed")
	}
}
