package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"dub-pipeline-service/internal/entity"
)

// WhisperAdapter transcribes audio against a whisper-compatible model server
// (POST /transcribe, multipart audio + language field).
type WhisperAdapter struct {
	baseURL string
	client  *http.Client
}

func NewWhisperAdapter(baseURL string, client *http.Client) *WhisperAdapter {
	if client == nil {
		client = defaultClient()
	}
	return &WhisperAdapter{baseURL: baseURL, client: client}
}

func (a *WhisperAdapter) Name() string { return "whisper" }

type whisperResponse struct {
	Language     string           `json:"language"`
	Duration     float64          `json:"duration"`
	Text         string           `json:"text"`
	SpeakerCount int              `json:"speaker_count"`
	Segments     []entity.Segment `json:"segments"`
}

func (a *WhisperAdapter) Process(ctx context.Context, in Input) (*Output, error) {
	const op = "whisper.transcribe"

	f, err := os.Open(in.AudioPath)
	if err != nil {
		return nil, Fatal(op, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filepath.Base(in.AudioPath))
	if err != nil {
		return nil, Fatal(op, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, Fatal(op, err)
	}
	if err := mw.WriteField("language", in.SourceLanguage); err != nil {
		return nil, Fatal(op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, Fatal(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcribe", &buf)
	if err != nil {
		return nil, Fatal(op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Retryable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(op, resp)
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, Retryable(op, err)
	}
	if len(wr.Segments) == 0 {
		return nil, Fatal(op, fmt.Errorf("no speech recognized"))
	}
	if err := entity.ValidateSegments(wr.Segments); err != nil {
		return nil, Fatal(op, err)
	}

	return &Output{
		Transcript: &entity.Transcript{
			Language:     wr.Language,
			Duration:     wr.Duration,
			Text:         wr.Text,
			SpeakerCount: wr.SpeakerCount,
			Segments:     wr.Segments,
		},
	}, nil
}

func (a *WhisperAdapter) HealthCheck(ctx context.Context) error {
	return healthGet(ctx, a.client, a.baseURL+"/health", "whisper.health")
}
