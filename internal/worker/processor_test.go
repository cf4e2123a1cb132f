package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/repository/postgresql"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/worker"
)

type fakeJobStore struct {
	job      *entity.Job
	claimErr error
	claimed  int
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	if f.job == nil || f.job.ID != id {
		return nil, postgresql.ErrNotFound
	}
	cp := *f.job
	return &cp, nil
}

func (f *fakeJobStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	f.claimed++
	return f.claimErr
}

type fakeOrch struct {
	progressErr error

	completedWith json.RawMessage
	completions   int
	failedKind    service.FailureKind
	failedMsg     string
	failures      int
}

func (f *fakeOrch) OnStageProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	return f.progressErr
}

func (f *fakeOrch) OnStageCompleted(ctx context.Context, jobID uuid.UUID, output json.RawMessage) error {
	f.completions++
	f.completedWith = output
	return nil
}

func (f *fakeOrch) OnStageFailed(ctx context.Context, jobID uuid.UUID, kind service.FailureKind, msg string) error {
	f.failures++
	f.failedKind = kind
	f.failedMsg = msg
	return nil
}

type scriptedRunner struct {
	stage  entity.Stage
	out    json.RawMessage
	err    error
	report bool // call report once before returning
	calls  int
}

func (r *scriptedRunner) Stage() entity.Stage { return r.stage }

func (r *scriptedRunner) Run(ctx context.Context, job *entity.Job, report worker.ProgressFunc) (json.RawMessage, error) {
	r.calls++
	if r.report {
		if err := report(50); err != nil {
			return nil, err
		}
	}
	return r.out, r.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func pendingJob(stage entity.Stage) *entity.Job {
	return &entity.Job{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Stage:     stage,
		Status:    entity.JobPending,
		Attempt:   1,
		Input:     json.RawMessage(`{}`),
	}
}

func TestProcessor_DuplicateDeliveryOfSettledJobIsNoop(t *testing.T) {
	job := pendingJob(entity.StageSTT)
	job.Status = entity.JobCompleted

	jobs := &fakeJobStore{job: job}
	orch := &fakeOrch{}
	runner := &scriptedRunner{stage: entity.StageSTT}
	p := worker.NewProcessor(jobs, orch, testLogger(), runner)

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("expected runner untouched, got %d calls", runner.calls)
	}
	if jobs.claimed != 0 {
		t.Fatalf("expected no claim on settled job, got %d", jobs.claimed)
	}
}

func TestProcessor_LostClaimIsNoop(t *testing.T) {
	job := pendingJob(entity.StageSTT)
	jobs := &fakeJobStore{job: job, claimErr: postgresql.ErrConflict}
	orch := &fakeOrch{}
	runner := &scriptedRunner{stage: entity.StageSTT}
	p := worker.NewProcessor(jobs, orch, testLogger(), runner)

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("expected runner untouched after lost claim, got %d calls", runner.calls)
	}
}

func TestProcessor_SuccessReportsCompletion(t *testing.T) {
	job := pendingJob(entity.StageTranslation)
	jobs := &fakeJobStore{job: job}
	orch := &fakeOrch{}
	runner := &scriptedRunner{stage: entity.StageTranslation, out: json.RawMessage(`{"translation":{}}`)}
	p := worker.NewProcessor(jobs, orch, testLogger(), runner)

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if orch.completions != 1 || string(orch.completedWith) != `{"translation":{}}` {
		t.Fatalf("expected completion with runner output, got %d %s", orch.completions, orch.completedWith)
	}
}

func TestProcessor_ErrorKindNormalization(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want service.FailureKind
	}{
		{"fatal adapter error", adapter.Fatal("stt.transcribe", errors.New("no speech recognized")), service.FailureFatal},
		{"retryable adapter error", adapter.Retryable("stt.transcribe", errors.New("503")), service.FailureRetryable},
		{"unclassified error defaults retryable", errors.New("connection reset"), service.FailureRetryable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := pendingJob(entity.StageSTT)
			jobs := &fakeJobStore{job: job}
			orch := &fakeOrch{}
			runner := &scriptedRunner{stage: entity.StageSTT, err: tc.err}
			p := worker.NewProcessor(jobs, orch, testLogger(), runner)

			if err := p.Process(context.Background(), job.ID.String()); err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if orch.failures != 1 || orch.failedKind != tc.want {
				t.Fatalf("expected one %s failure, got %d of kind %s", tc.want, orch.failures, orch.failedKind)
			}
		})
	}
}

func TestProcessor_AbortsWhenJobSettledExternally(t *testing.T) {
	job := pendingJob(entity.StageMuxing)
	jobs := &fakeJobStore{job: job}
	// cancellation flips the job under the worker; progress CAS rejects
	orch := &fakeOrch{progressErr: service.ErrInvalidProgress}
	runner := &scriptedRunner{stage: entity.StageMuxing, report: true, out: json.RawMessage(`{}`)}
	p := worker.NewProcessor(jobs, orch, testLogger(), runner)

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("expected abort to be swallowed, got %v", err)
	}
	if orch.completions != 0 || orch.failures != 0 {
		t.Fatalf("expected neither completion nor failure after abort, got %d/%d", orch.completions, orch.failures)
	}
}

func TestProcessor_MissingRunnerFailsFatally(t *testing.T) {
	job := pendingJob(entity.StageTTS)
	jobs := &fakeJobStore{job: job}
	orch := &fakeOrch{}
	p := worker.NewProcessor(jobs, orch, testLogger()) // no runners registered

	if err := p.Process(context.Background(), job.ID.String()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if orch.failures != 1 || orch.failedKind != service.FailureFatal {
		t.Fatalf("expected fatal failure for unregistered stage, got %d of kind %s", orch.failures, orch.failedKind)
	}
}
