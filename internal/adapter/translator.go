package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"dub-pipeline-service/internal/entity"
)

// TranslatorAdapter translates transcript segments against an MT model
// server (POST /translate). Segment timing and speakers pass through
// unchanged; only the text is replaced.
type TranslatorAdapter struct {
	baseURL string
	client  *http.Client
}

func NewTranslatorAdapter(baseURL string, client *http.Client) *TranslatorAdapter {
	if client == nil {
		client = defaultClient()
	}
	return &TranslatorAdapter{baseURL: baseURL, client: client}
}

func (a *TranslatorAdapter) Name() string { return "translator" }

type translateRequest struct {
	SourceLanguage string           `json:"source_language"`
	TargetLanguage string           `json:"target_language"`
	Segments       []entity.Segment `json:"segments"`
}

type translateResponse struct {
	Segments []entity.Segment `json:"segments"`
}

func (a *TranslatorAdapter) Process(ctx context.Context, in Input) (*Output, error) {
	const op = "translator.translate"

	body, err := json.Marshal(translateRequest{
		SourceLanguage: in.SourceLanguage,
		TargetLanguage: in.TargetLanguage,
		Segments:       in.Segments,
	})
	if err != nil {
		return nil, Fatal(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, Fatal(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Retryable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(op, resp)
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, Retryable(op, err)
	}
	if len(tr.Segments) != len(in.Segments) {
		return nil, Fatal(op, fmt.Errorf("segment count mismatch: sent %d, got %d", len(in.Segments), len(tr.Segments)))
	}
	if err := entity.ValidateSegments(tr.Segments); err != nil {
		return nil, Fatal(op, err)
	}

	return &Output{Segments: tr.Segments}, nil
}

func (a *TranslatorAdapter) HealthCheck(ctx context.Context) error {
	return healthGet(ctx, a.client, a.baseURL+"/health", "translator.health")
}
