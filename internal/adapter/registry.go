package adapter

import (
	"context"
	"fmt"
	"net/http"

	"dub-pipeline-service/internal/entity"
)

// Registry maps each stage to its configured adapter. It is built once at
// startup; workers look adapters up by stage instead of branching on
// provider names.
type Registry struct {
	adapters map[entity.Stage]StageAdapter
}

// Config names the provider and endpoint per stage.
type Config struct {
	STT         Endpoint
	Translation Endpoint
	TTS         Endpoint
}

type Endpoint struct {
	Provider string
	URL      string
}

// NewRegistry wires the configured providers. Unknown provider names fail at
// startup, not at job time.
func NewRegistry(cfg Config, client *http.Client) (*Registry, error) {
	if client == nil {
		client = defaultClient()
	}

	stt, err := buildSTT(cfg.STT, client)
	if err != nil {
		return nil, err
	}
	mt, err := buildTranslation(cfg.Translation, client)
	if err != nil {
		return nil, err
	}
	tts, err := buildTTS(cfg.TTS, client)
	if err != nil {
		return nil, err
	}

	return &Registry{adapters: map[entity.Stage]StageAdapter{
		entity.StageSTT:         stt,
		entity.StageTranslation: mt,
		entity.StageTTS:         tts,
	}}, nil
}

func buildSTT(ep Endpoint, client *http.Client) (StageAdapter, error) {
	switch ep.Provider {
	case "", "whisper":
		return NewWhisperAdapter(ep.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown stt provider: %s", ep.Provider)
	}
}

func buildTranslation(ep Endpoint, client *http.Client) (StageAdapter, error) {
	switch ep.Provider {
	case "", "mt":
		return NewTranslatorAdapter(ep.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", ep.Provider)
	}
}

func buildTTS(ep Endpoint, client *http.Client) (StageAdapter, error) {
	switch ep.Provider {
	case "", "tts":
		return NewTTSAdapter(ep.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown tts provider: %s", ep.Provider)
	}
}

// For returns the adapter serving the stage, if one is registered. Muxing
// has no adapter; it runs against the media collaborator.
func (r *Registry) For(stage entity.Stage) (StageAdapter, bool) {
	a, ok := r.adapters[stage]
	return a, ok
}

// HealthCheck pings every registered adapter and returns the per-adapter
// results keyed by stage.
func (r *Registry) HealthCheck(ctx context.Context) map[entity.Stage]error {
	out := make(map[entity.Stage]error, len(r.adapters))
	for stage, a := range r.adapters {
		out[stage] = a.HealthCheck(ctx)
	}
	return out
}

func healthGet(ctx context.Context, client *http.Client, url, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fatal(op, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Retryable(op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(op, resp)
	}
	return nil
}
