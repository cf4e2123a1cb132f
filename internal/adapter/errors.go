package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type ErrorKind int

const (
	// KindRetryable marks transient failures (network, timeouts, 5xx).
	KindRetryable ErrorKind = iota
	// KindFatal marks failures a retry cannot fix (bad input, 4xx,
	// unsupported content).
	KindFatal
)

// Error is the normalized failure every adapter reports. Workers pass the
// kind to the orchestrator so the retry policy can decide.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Retryable(op string, err error) *Error {
	return &Error{Kind: KindRetryable, Op: op, Err: err}
}

func Fatal(op string, err error) *Error {
	return &Error{Kind: KindFatal, Op: op, Err: err}
}

// IsRetryable classifies an arbitrary error. Unrecognized errors default to
// retryable: a transient outage must not fail a project permanently.
func IsRetryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == KindRetryable
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return true
}
