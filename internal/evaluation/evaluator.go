package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agusespa/promptgauge/internal/llm"
	"github.com/agusespa/promptgauge/internal/types"
)

// Orchestrator evaluates single test cases: it builds the review request,
// calls the provider, and classifies the response. Provider failures are
// recorded as provider_error outcomes, visibly distinct from predictions,
// and never abort the batch.
type Orchestrator struct {
	provider llm.Provider
	prompt   string
	timeout  time.Duration
}

func NewOrchestrator(provider llm.Provider, prompt string, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		prompt:   prompt,
		timeout:  timeout,
	}
}

func (o *Orchestrator) EvaluateCase(ctx context.Context, tc types.TestCase) types.Outcome {
	outcome := types.Outcome{
		TestID:    tc.ID,
		TestName:  tc.Name,
		Category:  tc.Category,
		Platform:  tc.Platform,
		Principle: tc.Expected.Principle,
		Severity:  tc.Expected.Severity,
		Expected:  tc.Expected.Detected,
	}

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := o.provider.Evaluate(callCtx, o.prompt, BuildReviewRequest(tc))
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.Status = types.StatusProviderError
		outcome.Error = err.Error()
		return outcome
	}

	verdict := Classify(response)
	predicted := verdict.Detected
	outcome.Predicted = &predicted
	outcome.RawResponse = response
	outcome.MatchedPrinciple = verdict.Principle
	outcome.MatchedSeverity = verdict.Severity
	if verdict.Ambiguous {
		outcome.Status = types.StatusAmbiguous
	} else {
		outcome.Status = types.StatusOK
	}
	return outcome
}

// BuildReviewRequest renders a test case as the user content of the review
// call: the snippet in a fenced block with its language hint, plus the
// exemption context tag when present.
func BuildReviewRequest(tc types.TestCase) string {
	var b strings.Builder
	b.WriteString("Code to review:\n\n")
	fmt.Fprintf(&b, "```%s\n%s\n```\n", tc.Language, strings.TrimRight(tc.Code, "\n"))
	if tc.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", tc.Context)
	}
	return b.String()
}
