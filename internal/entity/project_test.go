package entity_test

import (
	"testing"

	"dub-pipeline-service/internal/entity"
)

func TestCanTransition_ForwardEdges(t *testing.T) {
	order := []entity.ProjectStatus{
		entity.ProjectUploaded,
		entity.ProjectSTTProcessing,
		entity.ProjectSTTReview,
		entity.ProjectTranslating,
		entity.ProjectTranslationReview,
		entity.ProjectSynthesizing,
		entity.ProjectMuxing,
		entity.ProjectCompleted,
	}

	for i := 0; i < len(order)-1; i++ {
		if !entity.CanTransition(order[i], order[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", order[i], order[i+1])
		}
	}

	// skipping a status is never legal
	for i := 0; i < len(order)-2; i++ {
		if entity.CanTransition(order[i], order[i+2]) {
			t.Fatalf("expected %s -> %s to be rejected", order[i], order[i+2])
		}
	}

	// no going backwards
	if entity.CanTransition(entity.ProjectSTTReview, entity.ProjectSTTProcessing) {
		t.Fatalf("expected backward transition to be rejected")
	}
}

func TestCanTransition_FailedSink(t *testing.T) {
	nonTerminal := []entity.ProjectStatus{
		entity.ProjectUploaded,
		entity.ProjectSTTProcessing,
		entity.ProjectSTTReview,
		entity.ProjectTranslating,
		entity.ProjectTranslationReview,
		entity.ProjectSynthesizing,
		entity.ProjectMuxing,
	}
	for _, s := range nonTerminal {
		if !entity.CanTransition(s, entity.ProjectFailed) {
			t.Fatalf("expected %s -> failed to be legal", s)
		}
	}

	if entity.CanTransition(entity.ProjectCompleted, entity.ProjectFailed) {
		t.Fatalf("expected completed to be terminal")
	}
	if entity.CanTransition(entity.ProjectFailed, entity.ProjectSTTProcessing) {
		t.Fatalf("expected failed to be terminal")
	}
}

func TestStageMapping_RoundTrips(t *testing.T) {
	for _, stage := range entity.Stages() {
		got, ok := stage.ProcessingStatus().StageOf()
		if !ok || got != stage {
			t.Fatalf("stage %s: processing status maps back to %s (ok=%v)", stage, got, ok)
		}
	}
}

func TestStage_ReviewGates(t *testing.T) {
	if _, ok := entity.StageSTT.ReviewStatus(); !ok {
		t.Fatalf("expected stt to have a review gate")
	}
	if _, ok := entity.StageTranslation.ReviewStatus(); !ok {
		t.Fatalf("expected translation to have a review gate")
	}
	if _, ok := entity.StageTTS.ReviewStatus(); ok {
		t.Fatalf("expected tts to have no review gate")
	}
	if _, ok := entity.StageMuxing.ReviewStatus(); ok {
		t.Fatalf("expected muxing to have no review gate")
	}
}
