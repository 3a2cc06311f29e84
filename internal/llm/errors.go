package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind is the closed set of provider failure categories. Cross-backend
// handling (retry vs abort) keys on the kind, never on backend detail.
type ErrorKind string

const (
	ErrAuth          ErrorKind = "auth"
	ErrRateLimit     ErrorKind = "rate_limit"
	ErrNetwork       ErrorKind = "network"
	ErrTimeout       ErrorKind = "timeout"
	ErrModelNotFound ErrorKind = "model_not_found"
)

// CallError is a typed per-call provider failure. It is isolated: it aborts
// only the one call it belongs to, never the run.
type CallError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient. Auth and missing-model
// failures will not heal on retry.
func (e *CallError) Retryable() bool {
	return e.Kind == ErrRateLimit || e.Kind == ErrNetwork
}

func newCallError(provider string, kind ErrorKind, err error) *CallError {
	return &CallError{Kind: kind, Provider: provider, Err: err}
}

// statusKind maps an HTTP status (plus response body, for hosts that report
// unknown models with a generic status) to an error kind.
func statusKind(status int, body string) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimit
	}
	lower := strings.ToLower(body)
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist")) {
		return ErrModelNotFound
	}
	return ErrNetwork
}

// transportKind distinguishes a timed-out call from other transport failures.
func transportKind(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}
