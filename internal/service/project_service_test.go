package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/service"
)

type fakeCreator struct {
	createCalled int
	createID     uuid.UUID
}

func (f *fakeCreator) Create(ctx context.Context, sourceLang, targetLang, videoKey string) (uuid.UUID, error) {
	f.createCalled++
	return f.createID, nil
}

func (f *fakeCreator) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	return nil, errors.New("not implemented")
}

type fakeChecker struct {
	problems []string
}

func (f *fakeChecker) Check(ctx context.Context, path string) ([]string, error) {
	return f.problems, nil
}

type fakeFetcher struct{}

func (f *fakeFetcher) Download(ctx context.Context, key, destPath string) error {
	return os.WriteFile(destPath, []byte("video"), 0o644)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestProjectService_CreateProject_RejectedMediaCreatesNothing(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCreator{createID: uuid.New()}
	checker := &fakeChecker{problems: []string{"no audio track", "duration 400.0s exceeds 300s limit"}}

	svc := service.NewProjectService(creator, nil, nil, checker, &fakeFetcher{}, quietLogger())

	_, err := svc.CreateProject(ctx, service.CreateProjectRequest{
		VideoKey:       "uploads/clip.mp4",
		SourceLanguage: "en",
		TargetLanguage: "es",
	})

	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %#v", ve.Problems)
	}
	if creator.createCalled != 0 {
		t.Fatalf("expected no project row for rejected media, create called %d times", creator.createCalled)
	}
}

func TestProjectService_CreateProject_AcceptedMedia(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	creator := &fakeCreator{createID: id}

	svc := service.NewProjectService(creator, nil, nil, &fakeChecker{}, &fakeFetcher{}, quietLogger())

	got, err := svc.CreateProject(ctx, service.CreateProjectRequest{
		VideoKey:       "uploads/clip.mp4",
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != id {
		t.Fatalf("expected id %s, got %s", id, got)
	}
	if creator.createCalled != 1 {
		t.Fatalf("expected one create, got %d", creator.createCalled)
	}
}
