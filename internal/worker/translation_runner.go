package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/service"
)

// TranslationRunner translates the approved transcript segment by segment,
// keeping timing and speakers intact.
type TranslationRunner struct {
	artifacts ArtifactReader
	adapters  *adapter.Registry
}

func NewTranslationRunner(artifacts ArtifactReader, adapters *adapter.Registry) *TranslationRunner {
	return &TranslationRunner{artifacts: artifacts, adapters: adapters}
}

func (r *TranslationRunner) Stage() entity.Stage { return entity.StageTranslation }

func (r *TranslationRunner) Run(ctx context.Context, job *entity.Job, report ProgressFunc) (json.RawMessage, error) {
	var in service.TranslationInput
	if err := decodeInput(job, &in); err != nil {
		return nil, adapter.Fatal("translation.input", err)
	}

	art, err := r.artifacts.Get(ctx, job.ProjectID, entity.ArtifactTranscript)
	if err != nil {
		return nil, adapter.Fatal("translation", fmt.Errorf("load transcript: %w", err))
	}
	var transcript entity.Transcript
	if err := json.Unmarshal(art.Payload, &transcript); err != nil {
		return nil, adapter.Fatal("translation", fmt.Errorf("decode transcript: %w", err))
	}
	if err := report(10); err != nil {
		return nil, err
	}

	mt, ok := r.adapters.For(entity.StageTranslation)
	if !ok {
		return nil, adapter.Fatal("translation", fmt.Errorf("no adapter configured"))
	}
	out, err := mt.Process(ctx, adapter.Input{
		ProjectID:      job.ProjectID.String(),
		SourceLanguage: in.SourceLanguage,
		TargetLanguage: in.TargetLanguage,
		Segments:       transcript.Segments,
	})
	if err != nil {
		return nil, err
	}
	if err := report(90); err != nil {
		return nil, err
	}

	translation, err := json.Marshal(entity.Translation{
		SourceLanguage: in.SourceLanguage,
		TargetLanguage: in.TargetLanguage,
		Segments:       out.Segments,
	})
	if err != nil {
		return nil, err
	}
	return encodeOutput(service.TranslationOutput{Translation: translation})
}
