package media

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseSilence_NoSilence(t *testing.T) {
	w := parseSilence("", 10)
	if !almost(w.SpeechStart, 0) || !almost(w.SpeechEnd, 10) {
		t.Fatalf("expected full-file speech window, got %+v", w)
	}
	if !almost(w.LeadingSilence(), 0) || !almost(w.TrailingSilence(), 0) {
		t.Fatalf("expected no padding, got lead=%f trail=%f", w.LeadingSilence(), w.TrailingSilence())
	}
}

func TestParseSilence_LeadingSilence(t *testing.T) {
	stderr := `
[silencedetect @ 0x1] silence_start: 0.000000
[silencedetect @ 0x1] silence_end: 1.234000 | silence_duration: 1.234000
`
	w := parseSilence(stderr, 10)
	if !almost(w.SpeechStart, 1.234) {
		t.Fatalf("expected speech start 1.234, got %f", w.SpeechStart)
	}
	if !almost(w.LeadingSilence(), 1.234) {
		t.Fatalf("expected leading silence 1.234, got %f", w.LeadingSilence())
	}
}

func TestParseSilence_TrailingSilence(t *testing.T) {
	stderr := `
[silencedetect @ 0x1] silence_start: 8.500000
`
	w := parseSilence(stderr, 10)
	if !almost(w.SpeechEnd, 8.5) {
		t.Fatalf("expected speech end 8.5, got %f", w.SpeechEnd)
	}
	if !almost(w.TrailingSilence(), 1.5) {
		t.Fatalf("expected trailing silence 1.5, got %f", w.TrailingSilence())
	}
}

func TestParseSilence_InteriorPausesIgnored(t *testing.T) {
	// a mid-file pause is speech rhythm, not padding
	stderr := `
[silencedetect @ 0x1] silence_start: 4.000000
[silencedetect @ 0x1] silence_end: 4.800000 | silence_duration: 0.800000
`
	w := parseSilence(stderr, 10)
	if !almost(w.SpeechStart, 0) || !almost(w.SpeechEnd, 10) {
		t.Fatalf("expected interior pause ignored, got %+v", w)
	}
}

func TestParseSilence_BothEnds(t *testing.T) {
	stderr := `
[silencedetect @ 0x1] silence_start: 0.000000
[silencedetect @ 0x1] silence_end: 0.900000 | silence_duration: 0.900000
[silencedetect @ 0x1] silence_start: 9.200000
`
	w := parseSilence(stderr, 10)
	if !almost(w.SpeechStart, 0.9) || !almost(w.SpeechEnd, 9.2) {
		t.Fatalf("expected trimmed window 0.9..9.2, got %+v", w)
	}
}
