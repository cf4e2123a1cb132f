package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/media"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/storage"
)

// silenceThresholdDB is the noise floor for speech-window detection in the
// source audio.
const silenceThresholdDB = -30

// MuxingRunner aligns the dubbed track with the source speech window and
// muxes it back into the original video.
type MuxingRunner struct {
	media *media.FFmpeg
	store storage.Store
}

func NewMuxingRunner(m *media.FFmpeg, store storage.Store) *MuxingRunner {
	return &MuxingRunner{media: m, store: store}
}

func (r *MuxingRunner) Stage() entity.Stage { return entity.StageMuxing }

func (r *MuxingRunner) Run(ctx context.Context, job *entity.Job, report ProgressFunc) (json.RawMessage, error) {
	var in service.MuxingInput
	if err := decodeInput(job, &in); err != nil {
		return nil, adapter.Fatal("muxing.input", err)
	}

	tmp, err := os.MkdirTemp("", "mux-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	videoPath := filepath.Join(tmp, "source"+filepath.Ext(in.VideoKey))
	if err := r.store.Download(ctx, in.VideoKey, videoPath); err != nil {
		return nil, err
	}
	dubbedPath := filepath.Join(tmp, "dubbed.wav")
	if err := r.store.Download(ctx, in.DubbedAudioKey, dubbedPath); err != nil {
		return nil, err
	}
	if err := report(20); err != nil {
		return nil, err
	}

	// pad the dubbed track so speech starts where it did in the original
	audioPath := dubbedPath
	sourceAudio := filepath.Join(tmp, "orig.wav")
	if err := r.media.ExtractAudio(ctx, videoPath, sourceAudio); err != nil {
		return nil, err
	}
	win, err := r.media.DetectSilence(ctx, sourceAudio, silenceThresholdDB)
	if err != nil {
		return nil, err
	}
	if win.LeadingSilence() > 0.05 || win.TrailingSilence() > 0.05 {
		aligned := filepath.Join(tmp, "aligned.wav")
		if err := r.media.AddSilence(ctx, dubbedPath, aligned, win.LeadingSilence(), win.TrailingSilence()); err != nil {
			return nil, err
		}
		audioPath = aligned
	}
	if err := report(50); err != nil {
		return nil, err
	}

	outPath := filepath.Join(tmp, "output.mp4")
	if err := r.media.MuxAudioVideo(ctx, videoPath, audioPath, outPath, media.MuxOptions{
		Watermark: in.Watermark,
	}); err != nil {
		return nil, err
	}
	if err := report(80); err != nil {
		return nil, err
	}

	outputKey := storage.OutputVideoKey(job.ProjectID.String())
	url, err := r.store.Upload(ctx, outputKey, outPath, "video/mp4")
	if err != nil {
		return nil, err
	}

	return encodeOutput(service.MuxingOutput{
		OutputVideoKey: outputKey,
		OutputVideoURL: url,
	})
}
