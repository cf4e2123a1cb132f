package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectUploaded          ProjectStatus = "uploaded"
	ProjectSTTProcessing     ProjectStatus = "stt_processing"
	ProjectSTTReview         ProjectStatus = "stt_review"
	ProjectTranslating       ProjectStatus = "translating"
	ProjectTranslationReview ProjectStatus = "translation_review"
	ProjectSynthesizing      ProjectStatus = "synthesizing"
	ProjectMuxing            ProjectStatus = "muxing"
	ProjectCompleted         ProjectStatus = "completed"
	ProjectFailed            ProjectStatus = "failed"
)

// Project is one end-to-end dubbing request. All mutation goes through the
// orchestrator; workers never touch project rows directly.
type Project struct {
	ID                uuid.UUID     `json:"id"`
	Status            ProjectStatus `json:"status"`
	SourceLanguage    string        `json:"source_language"`
	TargetLanguage    string        `json:"target_language"`
	VideoKey          string        `json:"video_key"`
	AudioKey          *string       `json:"audio_key,omitempty"`
	OutputVideoKey    *string       `json:"output_video_key,omitempty"`
	OutputVideoURL    *string       `json:"output_video_url,omitempty"`
	CurrentStageError *string       `json:"current_stage_error,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt         *time.Time    `json:"expires_at,omitempty"`
}

func (s ProjectStatus) Terminal() bool {
	return s == ProjectCompleted || s == ProjectFailed
}

// StageOf returns the stage a processing status belongs to.
func (s ProjectStatus) StageOf() (Stage, bool) {
	switch s {
	case ProjectSTTProcessing:
		return StageSTT, true
	case ProjectTranslating:
		return StageTranslation, true
	case ProjectSynthesizing:
		return StageTTS, true
	case ProjectMuxing:
		return StageMuxing, true
	}
	return "", false
}

// nextStatus holds the single forward edge out of each non-terminal status.
// The failed sink is reachable from every non-terminal status and is handled
// separately in CanTransition.
var nextStatus = map[ProjectStatus]ProjectStatus{
	ProjectUploaded:          ProjectSTTProcessing,
	ProjectSTTProcessing:     ProjectSTTReview,
	ProjectSTTReview:         ProjectTranslating,
	ProjectTranslating:       ProjectTranslationReview,
	ProjectTranslationReview: ProjectSynthesizing,
	ProjectSynthesizing:      ProjectMuxing,
	ProjectMuxing:            ProjectCompleted,
}

// CanTransition reports whether from -> to is a legal edge of the project
// state machine. Administrative reopen of a failed project is not an edge
// here; it goes through the dedicated repository guard.
func CanTransition(from, to ProjectStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == ProjectFailed {
		return true
	}
	return nextStatus[from] == to
}
