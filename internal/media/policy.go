package media

import (
	"context"
	"fmt"
	"strings"
)

// Upload acceptance policy. Fixed for now; the numbers mirror what the
// product accepts for a single dubbing run.
const (
	MaxDurationSeconds = 300
	MaxSizeBytes       = 500 * 1024 * 1024
)

var allowedFormats = map[string]bool{
	"mp4": true,
	"mov": true,
}

// CheckPolicy evaluates probed metadata against the acceptance policy and
// returns the list of violations, empty when the file is acceptable.
func CheckPolicy(m *Metadata) []string {
	var problems []string

	if !allowedFormats[strings.ToLower(m.Format)] {
		problems = append(problems, fmt.Sprintf("unsupported container %q, allowed: mp4, mov", m.Format))
	}
	if m.Duration > MaxDurationSeconds {
		problems = append(problems, fmt.Sprintf("duration %.0fs exceeds the %ds limit", m.Duration, MaxDurationSeconds))
	}
	if m.SizeBytes > MaxSizeBytes {
		problems = append(problems, fmt.Sprintf("size %dMB exceeds the %dMB limit", m.SizeBytes/(1024*1024), MaxSizeBytes/(1024*1024)))
	}
	if !m.HasAudio {
		problems = append(problems, "video must contain an audio track")
	}

	return problems
}

// Check probes the file and applies the acceptance policy. This is the
// entry point the upload path uses (service.MediaChecker).
func (f *FFmpeg) Check(ctx context.Context, path string) ([]string, error) {
	m, err := f.Probe(ctx, path)
	if err != nil {
		// unreadable media is a policy failure, not an infrastructure error
		return []string{fmt.Sprintf("unreadable media: %v", err)}, nil
	}
	return CheckPolicy(m), nil
}
