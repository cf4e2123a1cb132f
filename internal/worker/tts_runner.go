package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/storage"
)

// TTSRunner synthesizes the dubbed speech track from the approved
// translation and stores it under the project's deterministic key.
type TTSRunner struct {
	artifacts ArtifactReader
	store     storage.Store
	adapters  *adapter.Registry
}

func NewTTSRunner(artifacts ArtifactReader, store storage.Store, adapters *adapter.Registry) *TTSRunner {
	return &TTSRunner{artifacts: artifacts, store: store, adapters: adapters}
}

func (r *TTSRunner) Stage() entity.Stage { return entity.StageTTS }

func (r *TTSRunner) Run(ctx context.Context, job *entity.Job, report ProgressFunc) (json.RawMessage, error) {
	var in service.TTSInput
	if err := decodeInput(job, &in); err != nil {
		return nil, adapter.Fatal("tts.input", err)
	}

	art, err := r.artifacts.Get(ctx, job.ProjectID, entity.ArtifactTranslation)
	if err != nil {
		return nil, adapter.Fatal("tts", fmt.Errorf("load translation: %w", err))
	}
	var translation entity.Translation
	if err := json.Unmarshal(art.Payload, &translation); err != nil {
		return nil, adapter.Fatal("tts", fmt.Errorf("decode translation: %w", err))
	}
	if err := report(10); err != nil {
		return nil, err
	}

	tmp, err := os.MkdirTemp("", "tts-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	tts, ok := r.adapters.For(entity.StageTTS)
	if !ok {
		return nil, adapter.Fatal("tts", fmt.Errorf("no adapter configured"))
	}
	out, err := tts.Process(ctx, adapter.Input{
		ProjectID:      job.ProjectID.String(),
		TargetLanguage: in.TargetLanguage,
		Segments:       translation.Segments,
		OutputDir:      tmp,
	})
	if err != nil {
		return nil, err
	}
	if err := report(80); err != nil {
		return nil, err
	}

	audioKey := storage.DubbedAudioKey(job.ProjectID.String())
	if _, err := r.store.Upload(ctx, audioKey, out.AudioPath, "audio/wav"); err != nil {
		return nil, err
	}
	if err := report(95); err != nil {
		return nil, err
	}

	dubbed, err := json.Marshal(entity.DubbedAudio{
		AudioKey: audioKey,
		Duration: out.Duration,
		Segments: translation.Segments,
	})
	if err != nil {
		return nil, err
	}
	return encodeOutput(service.TTSOutput{
		DubbedAudioKey: audioKey,
		Duration:       out.Duration,
		DubbedAudio:    dubbed,
	})
}
