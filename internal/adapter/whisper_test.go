package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dub-pipeline-service/internal/entity"
)

func tempAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(p, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestWhisperAdapter_Process(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		_ = json.NewEncoder(w).Encode(whisperResponse{
			Language: "en",
			Duration: 2.0,
			Text:     "hello there",
			Segments: []entity.Segment{
				{ID: 0, Start: 0, End: 1.0, Text: "hello", Speaker: "A", Confidence: 0.95},
				{ID: 1, Start: 1.0, End: 2.0, Text: "there", Speaker: "A", Confidence: 0.9},
			},
		})
	}))
	defer srv.Close()

	a := NewWhisperAdapter(srv.URL, srv.Client())
	out, err := a.Process(context.Background(), Input{AudioPath: tempAudio(t), SourceLanguage: "en"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotLanguage != "en" {
		t.Fatalf("expected language field en, got %q", gotLanguage)
	}
	if out.Transcript == nil || len(out.Transcript.Segments) != 2 || out.Transcript.Text != "hello there" {
		t.Fatalf("unexpected transcript %+v", out.Transcript)
	}
}

func TestWhisperAdapter_NoSpeechIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(whisperResponse{Language: "en"})
	}))
	defer srv.Close()

	a := NewWhisperAdapter(srv.URL, srv.Client())
	_, err := a.Process(context.Background(), Input{AudioPath: tempAudio(t), SourceLanguage: "en"})

	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindFatal {
		t.Fatalf("expected fatal no-speech error, got %v", err)
	}
}

func TestWhisperAdapter_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewWhisperAdapter(srv.URL, srv.Client())
	_, err := a.Process(context.Background(), Input{AudioPath: tempAudio(t), SourceLanguage: "en"})

	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
