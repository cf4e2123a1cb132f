package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/media"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/storage"
)

// STTRunner extracts the audio track, stores it under the project's
// deterministic audio key and transcribes it.
type STTRunner struct {
	media    *media.FFmpeg
	store    storage.Store
	adapters *adapter.Registry
}

func NewSTTRunner(m *media.FFmpeg, store storage.Store, adapters *adapter.Registry) *STTRunner {
	return &STTRunner{media: m, store: store, adapters: adapters}
}

func (r *STTRunner) Stage() entity.Stage { return entity.StageSTT }

func (r *STTRunner) Run(ctx context.Context, job *entity.Job, report ProgressFunc) (json.RawMessage, error) {
	var in service.STTInput
	if err := decodeInput(job, &in); err != nil {
		return nil, adapter.Fatal("stt.input", err)
	}

	tmp, err := os.MkdirTemp("", "stt-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	videoPath := filepath.Join(tmp, "source"+filepath.Ext(in.VideoKey))
	if err := r.store.Download(ctx, in.VideoKey, videoPath); err != nil {
		return nil, err
	}
	if err := report(10); err != nil {
		return nil, err
	}

	audioPath := filepath.Join(tmp, "audio.wav")
	if err := r.media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}
	if err := report(25); err != nil {
		return nil, err
	}

	audioKey := storage.ExtractedAudioKey(job.ProjectID.String())
	if _, err := r.store.Upload(ctx, audioKey, audioPath, "audio/wav"); err != nil {
		return nil, err
	}
	if err := report(35); err != nil {
		return nil, err
	}

	stt, ok := r.adapters.For(entity.StageSTT)
	if !ok {
		return nil, adapter.Fatal("stt", fmt.Errorf("no adapter configured"))
	}
	out, err := stt.Process(ctx, adapter.Input{
		ProjectID:      job.ProjectID.String(),
		SourceLanguage: in.SourceLanguage,
		AudioPath:      audioPath,
	})
	if err != nil {
		return nil, err
	}
	if err := report(90); err != nil {
		return nil, err
	}

	transcript, err := json.Marshal(out.Transcript)
	if err != nil {
		return nil, err
	}
	return encodeOutput(service.STTOutput{
		AudioKey:   audioKey,
		Transcript: transcript,
	})
}
