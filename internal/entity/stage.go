package entity

type Stage string

const (
	StageSTT         Stage = "stt"
	StageTranslation Stage = "translation"
	StageTTS         Stage = "tts"
	StageMuxing      Stage = "muxing"
)

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageSTT, StageTranslation, StageTTS, StageMuxing}
}

func (s Stage) Valid() bool {
	switch s {
	case StageSTT, StageTranslation, StageTTS, StageMuxing:
		return true
	}
	return false
}

// ProcessingStatus maps a stage to the project status that marks it in flight.
func (s Stage) ProcessingStatus() ProjectStatus {
	switch s {
	case StageSTT:
		return ProjectSTTProcessing
	case StageTranslation:
		return ProjectTranslating
	case StageTTS:
		return ProjectSynthesizing
	case StageMuxing:
		return ProjectMuxing
	}
	return ProjectFailed
}

// ReviewStatus returns the human-review gate entered after the stage
// completes, if the stage has one.
func (s Stage) ReviewStatus() (ProjectStatus, bool) {
	switch s {
	case StageSTT:
		return ProjectSTTReview, true
	case StageTranslation:
		return ProjectTranslationReview, true
	}
	return "", false
}

// Next returns the stage that follows s in the pipeline.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageSTT:
		return StageTranslation, true
	case StageTranslation:
		return StageTTS, true
	case StageTTS:
		return StageMuxing, true
	}
	return "", false
}

// ArtifactKind returns the artifact produced by the stage, if any.
// Muxing produces the final video, tracked on the project itself.
func (s Stage) ArtifactKind() (ArtifactKind, bool) {
	switch s {
	case StageSTT:
		return ArtifactTranscript, true
	case StageTranslation:
		return ArtifactTranslation, true
	case StageTTS:
		return ArtifactDubbedAudio, true
	}
	return "", false
}
