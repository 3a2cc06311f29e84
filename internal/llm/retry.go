package llm

import (
	"context"
	"errors"
	"time"
)

const (
	maxAttempts = 3
	baseDelay   = 500 * time.Millisecond
	maxDelay    = 8 * time.Second
)

// retryProvider retries transient failures (rate limit, network) with
// bounded exponential backoff. Auth and missing-model failures abort the
// call immediately.
type retryProvider struct {
	inner Provider
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a provider with the retry policy.
func WithRetry(p Provider) Provider {
	return &retryProvider{inner: p, sleep: sleepCtx}
}

func (r *retryProvider) Name() string { return r.inner.Name() }

func (r *retryProvider) Model() string { return r.inner.Model() }

func (r *retryProvider) Evaluate(ctx context.Context, systemPrompt, code string) (string, error) {
	delay := baseDelay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := r.inner.Evaluate(ctx, systemPrompt, code)
		if err == nil {
			return response, nil
		}
		lastErr = err

		var callErr *CallError
		if !errors.As(err, &callErr) || !callErr.Retryable() {
			return "", err
		}
		if attempt == maxAttempts {
			break
		}
		if err := r.sleep(ctx, delay); err != nil {
			return "", newCallError(r.Name(), ErrTimeout, err)
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
