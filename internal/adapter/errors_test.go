package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"fatal adapter error", Fatal("x", errors.New("bad input")), false},
		{"retryable adapter error", Retryable("x", errors.New("503")), true},
		{"wrapped fatal", fmt.Errorf("run: %w", Fatal("x", errors.New("bad"))), false},
		{"context canceled", context.Canceled, false},
		{"plain error defaults retryable", errors.New("connection reset"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestHTTPError_Classification(t *testing.T) {
	mk := func(code int, body string) *http.Response {
		return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
	}

	if e := httpError("op", mk(500, "boom")); e.Kind != KindRetryable {
		t.Fatalf("expected 500 retryable, got %v", e.Kind)
	}
	if e := httpError("op", mk(429, "slow down")); e.Kind != KindRetryable {
		t.Fatalf("expected 429 retryable, got %v", e.Kind)
	}
	if e := httpError("op", mk(400, "bad payload")); e.Kind != KindFatal {
		t.Fatalf("expected 400 fatal, got %v", e.Kind)
	}
	if e := httpError("op", mk(404, "")); e.Kind != KindFatal {
		t.Fatalf("expected 404 fatal, got %v", e.Kind)
	}

	e := httpError("stt.transcribe", mk(400, "bad payload"))
	if !strings.Contains(e.Error(), "stt.transcribe") || !strings.Contains(e.Error(), "bad payload") {
		t.Fatalf("expected op and body in message, got %q", e.Error())
	}
}
