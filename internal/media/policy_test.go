package media

import (
	"strings"
	"testing"
)

func TestCheckPolicy(t *testing.T) {
	ok := &Metadata{Format: "mp4", Duration: 120, SizeBytes: 10 * 1024 * 1024, HasAudio: true}
	if problems := CheckPolicy(ok); len(problems) != 0 {
		t.Fatalf("expected acceptable media, got %v", problems)
	}

	cases := []struct {
		name string
		m    *Metadata
		want string
	}{
		{
			name: "bad container",
			m:    &Metadata{Format: "mkv", Duration: 10, SizeBytes: 1024, HasAudio: true},
			want: "unsupported container",
		},
		{
			name: "too long",
			m:    &Metadata{Format: "mp4", Duration: 301, SizeBytes: 1024, HasAudio: true},
			want: "exceeds the 300s limit",
		},
		{
			name: "too big",
			m:    &Metadata{Format: "mp4", Duration: 10, SizeBytes: 501 * 1024 * 1024, HasAudio: true},
			want: "exceeds the 500MB limit",
		},
		{
			name: "no audio",
			m:    &Metadata{Format: "mp4", Duration: 10, SizeBytes: 1024, HasAudio: false},
			want: "audio track",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := CheckPolicy(tc.m)
			if len(problems) != 1 {
				t.Fatalf("expected one problem, got %v", problems)
			}
			if !strings.Contains(problems[0], tc.want) {
				t.Fatalf("expected problem mentioning %q, got %q", tc.want, problems[0])
			}
		})
	}
}

func TestCheckPolicy_MOVUppercaseAccepted(t *testing.T) {
	m := &Metadata{Format: "MOV", Duration: 10, SizeBytes: 1024, HasAudio: true}
	if problems := CheckPolicy(m); len(problems) != 0 {
		t.Fatalf("expected mov accepted regardless of case, got %v", problems)
	}
}

func TestCheckPolicy_MultipleProblemsReported(t *testing.T) {
	m := &Metadata{Format: "avi", Duration: 400, SizeBytes: 1024, HasAudio: false}
	if problems := CheckPolicy(m); len(problems) != 3 {
		t.Fatalf("expected all three problems, got %v", problems)
	}
}
