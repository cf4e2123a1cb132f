package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"dub-pipeline-service/internal/entity"
)

// TTSAdapter synthesizes dubbed speech against a TTS model server
// (POST /synthesize, JSON segments in, WAV body out). The synthesized track
// is written under in.OutputDir; the duration comes back in a header.
type TTSAdapter struct {
	baseURL string
	client  *http.Client
}

func NewTTSAdapter(baseURL string, client *http.Client) *TTSAdapter {
	if client == nil {
		client = defaultClient()
	}
	return &TTSAdapter{baseURL: baseURL, client: client}
}

func (a *TTSAdapter) Name() string { return "tts" }

type synthesizeRequest struct {
	TargetLanguage string           `json:"target_language"`
	Segments       []entity.Segment `json:"segments"`
}

func (a *TTSAdapter) Process(ctx context.Context, in Input) (*Output, error) {
	const op = "tts.synthesize"

	body, err := json.Marshal(synthesizeRequest{
		TargetLanguage: in.TargetLanguage,
		Segments:       in.Segments,
	})
	if err != nil {
		return nil, Fatal(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, Fatal(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Retryable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(op, resp)
	}

	outPath := filepath.Join(in.OutputDir, "dubbed.wav")
	f, err := os.Create(outPath)
	if err != nil {
		return nil, Fatal(op, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return nil, Retryable(op, err)
	}
	if err := f.Close(); err != nil {
		return nil, Fatal(op, err)
	}

	duration, _ := strconv.ParseFloat(resp.Header.Get("X-Duration-Seconds"), 64)

	return &Output{AudioPath: outPath, Duration: duration}, nil
}

func (a *TTSAdapter) HealthCheck(ctx context.Context) error {
	return healthGet(ctx, a.client, a.baseURL+"/health", "tts.health")
}
