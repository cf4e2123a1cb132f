package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/entity"
)

// ValidationError carries the media acceptance problems back to the client.
// Projects are never created for media that fails validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid media: " + strings.Join(e.Problems, "; ")
}

// ProjectCreator is the subset of the project store the API service needs.
type ProjectCreator interface {
	Create(ctx context.Context, sourceLang, targetLang, videoKey string) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
}

type JobLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Job, error)
}

type ArtifactReader interface {
	Get(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) (*entity.Artifact, error)
}

// MediaChecker validates an uploaded file against the acceptance policy and
// returns the list of problems (empty means acceptable).
type MediaChecker interface {
	Check(ctx context.Context, path string) ([]string, error)
}

// BlobFetcher pulls a stored object to a local path.
type BlobFetcher interface {
	Download(ctx context.Context, key, destPath string) error
}

type ProjectService struct {
	projects  ProjectCreator
	jobs      JobLister
	artifacts ArtifactReader
	media     MediaChecker
	blobs     BlobFetcher
	log       *logrus.Logger
}

func NewProjectService(projects ProjectCreator, jobs JobLister, artifacts ArtifactReader, media MediaChecker, blobs BlobFetcher, log *logrus.Logger) *ProjectService {
	return &ProjectService{
		projects:  projects,
		jobs:      jobs,
		artifacts: artifacts,
		media:     media,
		blobs:     blobs,
		log:       log,
	}
}

type CreateProjectRequest struct {
	VideoKey       string
	SourceLanguage string
	TargetLanguage string
}

// CreateProject validates the uploaded video before any row is written.
// Media that fails the acceptance policy is rejected with *ValidationError
// and no project exists afterwards.
func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest) (uuid.UUID, error) {
	tmpDir, err := os.MkdirTemp("", "dub-validate-*")
	if err != nil {
		return uuid.Nil, err
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, "source"+filepath.Ext(req.VideoKey))
	if err := s.blobs.Download(ctx, req.VideoKey, local); err != nil {
		return uuid.Nil, fmt.Errorf("fetch uploaded video: %w", err)
	}

	problems, err := s.media.Check(ctx, local)
	if err != nil {
		return uuid.Nil, fmt.Errorf("validate video: %w", err)
	}
	if len(problems) > 0 {
		s.log.WithFields(logrus.Fields{
			"video_key": req.VideoKey, "problems": problems,
		}).Info("upload rejected")
		return uuid.Nil, &ValidationError{Problems: problems}
	}

	id, err := s.projects.Create(ctx, req.SourceLanguage, req.TargetLanguage, req.VideoKey)
	if err != nil {
		return uuid.Nil, err
	}

	s.log.WithFields(logrus.Fields{
		"project_id": id, "source": req.SourceLanguage, "target": req.TargetLanguage,
	}).Info("project created")
	return id, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) ListJobs(ctx context.Context, projectID uuid.UUID) ([]entity.Job, error) {
	return s.jobs.ListByProject(ctx, projectID)
}

func (s *ProjectService) GetArtifact(ctx context.Context, projectID uuid.UUID, kind entity.ArtifactKind) (*entity.Artifact, error) {
	return s.artifacts.Get(ctx, projectID, kind)
}
