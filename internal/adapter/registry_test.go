package adapter

import (
	"strings"
	"testing"

	"dub-pipeline-service/internal/entity"
)

func TestNewRegistry_DefaultProviders(t *testing.T) {
	r, err := NewRegistry(Config{
		STT:         Endpoint{URL: "http://stt:9000"},
		Translation: Endpoint{URL: "http://mt:9001"},
		TTS:         Endpoint{URL: "http://tts:9002"},
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	for _, stage := range []entity.Stage{entity.StageSTT, entity.StageTranslation, entity.StageTTS} {
		if _, ok := r.For(stage); !ok {
			t.Fatalf("expected adapter for %s", stage)
		}
	}
	if _, ok := r.For(entity.StageMuxing); ok {
		t.Fatalf("expected no adapter for muxing")
	}
}

func TestNewRegistry_UnknownProviderFailsAtStartup(t *testing.T) {
	_, err := NewRegistry(Config{
		STT: Endpoint{Provider: "deepgram", URL: "http://x"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown stt provider") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}
