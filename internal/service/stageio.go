package service

import "encoding/json"

// Stage inputs are written once when a job is first created and reused
// verbatim for every retry, so a re-run sees exactly the same references.

type STTInput struct {
	VideoKey       string `json:"video_key"`
	SourceLanguage string `json:"source_language"`
}

type TranslationInput struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type TTSInput struct {
	TargetLanguage string `json:"target_language"`
}

type MuxingInput struct {
	VideoKey       string `json:"video_key"`
	DubbedAudioKey string `json:"dubbed_audio_key"`
	Watermark      bool   `json:"watermark"`
}

// Stage outputs are returned by workers through OnStageCompleted and stored
// on the job row for the audit trail.

type STTOutput struct {
	AudioKey   string          `json:"audio_key"`
	Transcript json.RawMessage `json:"transcript"`
}

type TranslationOutput struct {
	Translation json.RawMessage `json:"translation"`
}

type TTSOutput struct {
	DubbedAudioKey string          `json:"dubbed_audio_key"`
	Duration       float64         `json:"duration"`
	DubbedAudio    json.RawMessage `json:"dubbed_audio"`
}

type MuxingOutput struct {
	OutputVideoKey string `json:"output_video_key"`
	OutputVideoURL string `json:"output_video_url"`
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
