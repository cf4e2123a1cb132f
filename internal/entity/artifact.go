package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ArtifactKind string

const (
	ArtifactTranscript  ArtifactKind = "transcript"
	ArtifactTranslation ArtifactKind = "translation"
	ArtifactDubbedAudio ArtifactKind = "dubbed_audio"
)

// Artifact is a stage output keyed by (project, kind). Re-running a stage
// overwrites the payload in place, so retries never duplicate artifacts.
// Approved gates advancement past the human-review stages.
type Artifact struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Kind      ArtifactKind    `json:"kind"`
	Approved  bool            `json:"approved"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Segment is one timed unit of transcript or translation text.
type Segment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

type Transcript struct {
	Language     string    `json:"language"`
	Duration     float64   `json:"duration"`
	Text         string    `json:"text"`
	SpeakerCount int       `json:"speaker_count"`
	Segments     []Segment `json:"segments"`
}

type Translation struct {
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Segments       []Segment `json:"segments"`
}

type DubbedAudio struct {
	AudioKey string    `json:"audio_key"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// ValidateSegments checks segment timing: every window must be well formed,
// start/end must be non-decreasing in segment order, and windows of the same
// speaker must not overlap.
func ValidateSegments(segs []Segment) error {
	lastEnd := map[string]float64{}
	var prev *Segment
	for i := range segs {
		s := &segs[i]
		if s.End < s.Start {
			return fmt.Errorf("segment %d: end %.3f before start %.3f", s.ID, s.End, s.Start)
		}
		if prev != nil && (s.Start < prev.Start || s.End < prev.End) {
			return fmt.Errorf("segment %d: timing goes backwards", s.ID)
		}
		if end, ok := lastEnd[s.Speaker]; ok && s.Start < end {
			return fmt.Errorf("segment %d: overlaps previous segment of speaker %s", s.ID, s.Speaker)
		}
		lastEnd[s.Speaker] = s.End
		prev = s
	}
	return nil
}
