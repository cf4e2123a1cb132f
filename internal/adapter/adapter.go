// Package adapter defines the contract between stage workers and the
// external model providers (transcription, translation, speech synthesis).
// Implementations are swappable per stage and selected from configuration at
// startup.
package adapter

import (
	"context"

	"dub-pipeline-service/internal/entity"
)

// Input carries the references a stage adapter needs. Fields are populated
// per stage: STT uses AudioPath+SourceLanguage, translation uses
// Segments+both languages, TTS uses Segments+TargetLanguage and writes its
// result under OutputDir.
type Input struct {
	ProjectID      string
	SourceLanguage string
	TargetLanguage string
	AudioPath      string
	Segments       []entity.Segment
	OutputDir      string
}

// Output is the union of stage results; exactly the fields relevant to the
// stage are set.
type Output struct {
	Transcript *entity.Transcript
	Segments   []entity.Segment
	AudioPath  string
	Duration   float64
}

// StageAdapter is the uniform contract every provider implements. Process
// must be safe to re-run with the same input: retried jobs call it again.
type StageAdapter interface {
	Name() string
	Process(ctx context.Context, in Input) (*Output, error)
	HealthCheck(ctx context.Context) error
}
