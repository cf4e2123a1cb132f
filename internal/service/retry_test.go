package service_test

import (
	"testing"
	"time"

	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/service"
)

func TestRetryPolicy_DelayGrowsExponentially(t *testing.T) {
	p := service.DefaultRetryPolicy()

	want := []time.Duration{5 * time.Second, 15 * time.Second, 45 * time.Second}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("attempt %d: expected delay %v, got %v", i+1, w, got)
		}
	}
}

func TestRetryPolicy_PerStageOverride(t *testing.T) {
	p := service.DefaultRetryPolicy()
	p.PerStageMax = map[entity.Stage]int{entity.StageMuxing: 1}

	if got := p.MaxFor(entity.StageMuxing); got != 1 {
		t.Fatalf("expected muxing max 1, got %d", got)
	}
	if got := p.MaxFor(entity.StageSTT); got != 3 {
		t.Fatalf("expected default max 3, got %d", got)
	}
}
