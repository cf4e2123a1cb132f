package service

import (
	"time"

	"dub-pipeline-service/internal/entity"
)

// RetryPolicy controls how many attempts a stage gets and how long to wait
// before re-enqueueing after a retryable failure.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// PerStageMax overrides MaxAttempts for individual stages.
	PerStageMax map[entity.Stage]int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
	}
}

func (p RetryPolicy) MaxFor(stage entity.Stage) int {
	if n, ok := p.PerStageMax[stage]; ok {
		return n
	}
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return 3
}

// Delay returns the backoff before the next attempt: 5s after the first
// failure, then 15s, 45s.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 5 * time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 3
	}
	return d
}
