package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/promptgauge/internal/types"
)

// stubProvider returns canned responses keyed by the rendered request, or a
// fixed response/error for every call.
type stubProvider struct {
	name     string
	model    string
	response string
	err      error
	fn       func(ctx context.Context, systemPrompt, code string) (string, error)
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Model() string { return s.model }

func (s *stubProvider) Evaluate(ctx context.Context, systemPrompt, code string) (string, error) {
	if s.fn != nil {
		return s.fn(ctx, systemPrompt, code)
	}
	return s.response, s.err
}

func sampleCase() types.TestCase {
	return types.TestCase{
		ID:       "sec-001",
		Name:     "Hardcoded credentials",
		Category: "security",
		Platform: types.PlatformWeb,
		Language: "typescript",
		Code:     `const key = "sk-live-123";`,
		Expected: types.Expectation{
			Detected:  true,
			Severity:  "critical",
			Principle: "security",
		},
	}
}

func TestEvaluateCaseDetection(t *testing.T) {
	provider := &stubProvider{
		name:     "openai",
		model:    "gpt-4o",
		response: "Critical security violation: hardcoded API key.",
	}
	orch := NewOrchestrator(provider, "review prompt", 0)

	outcome := orch.EvaluateCase(context.Background(), sampleCase())

	assert.Equal(t, types.StatusOK, outcome.Status)
	require.NotNil(t, outcome.Predicted)
	assert.True(t, *outcome.Predicted)
	assert.True(t, outcome.Correct())
	assert.Equal(t, "security", outcome.MatchedPrinciple)
	assert.Equal(t, "critical", outcome.MatchedSeverity)
	assert.Equal(t, provider.response, outcome.RawResponse)
	assert.Empty(t, outcome.Error)
}

func TestEvaluateCaseAmbiguousResponse(t *testing.T) {
	provider := &stubProvider{name: "openai", model: "gpt-4o", response: "Interesting snippet."}
	orch := NewOrchestrator(provider, "review prompt", 0)

	outcome := orch.EvaluateCase(context.Background(), sampleCase())

	assert.Equal(t, types.StatusAmbiguous, outcome.Status)
	require.NotNil(t, outcome.Predicted)
	// Ambiguity resolves conservatively to not-detected.
	assert.False(t, *outcome.Predicted)
}

func TestEvaluateCaseProviderError(t *testing.T) {
	provider := &stubProvider{name: "openai", model: "gpt-4o", err: errors.New("connection refused")}
	orch := NewOrchestrator(provider, "review prompt", 0)

	outcome := orch.EvaluateCase(context.Background(), sampleCase())

	assert.Equal(t, types.StatusProviderError, outcome.Status)
	assert.Nil(t, outcome.Predicted)
	assert.Contains(t, outcome.Error, "connection refused")
	assert.Empty(t, outcome.RawResponse)
	assert.False(t, outcome.Correct())
}

func TestEvaluateCaseAppliesTimeout(t *testing.T) {
	provider := &stubProvider{
		name:  "ollama",
		model: "llama3.1",
		fn: func(ctx context.Context, _, _ string) (string, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
			return "No violations detected.", nil
		},
	}
	orch := NewOrchestrator(provider, "review prompt", 30*time.Second)

	outcome := orch.EvaluateCase(context.Background(), sampleCase())

	assert.Equal(t, types.StatusOK, outcome.Status)
}

func TestEvaluateCasePassesPromptAndRequest(t *testing.T) {
	var gotSystem, gotUser string
	provider := &stubProvider{
		name:  "openai",
		model: "gpt-4o",
		fn: func(_ context.Context, systemPrompt, code string) (string, error) {
			gotSystem = systemPrompt
			gotUser = code
			return "No violations detected.", nil
		},
	}
	orch := NewOrchestrator(provider, "the review prompt", 0)

	tc := sampleCase()
	orch.EvaluateCase(context.Background(), tc)

	assert.Equal(t, "the review prompt", gotSystem)
	assert.Equal(t, BuildReviewRequest(tc), gotUser)
}

func TestBuildReviewRequest(t *testing.T) {
	tc := types.TestCase{
		Language: "kotlin",
		Code:     "val x = 1\n",
		Context:  "test_code",
	}

	got := BuildReviewRequest(tc)

	assert.Equal(t, "Code to review:\n\n```kotlin\nval x = 1\n```\n\nContext: test_code\n", got)
}

func TestBuildReviewRequestWithoutContext(t *testing.T) {
	tc := types.TestCase{Language: "go", Code: "x := 1"}

	got := BuildReviewRequest(tc)

	assert.Equal(t, "Code to review:\n\n```go\nx := 1\n```\n", got)
	assert.NotContains(t, got, "Context:")
}
