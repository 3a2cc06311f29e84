package evaluation

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/promptgauge/internal/types"
)

// scriptedProvider answers from the request content, so runs are fully
// reproducible: a case whose code mentions "bad" is flagged, everything else
// passes.
func scriptedProvider(name string) *stubProvider {
	return &stubProvider{
		name:  name,
		model: "test-model",
		fn: func(_ context.Context, _, code string) (string, error) {
			if strings.Contains(code, "bad") {
				return "Violation found: critical security issue.", nil
			}
			return "No violations detected.", nil
		},
	}
}

func comparisonCases() []types.TestCase {
	return []types.TestCase{
		{ID: "c-1", Name: "flagged", Platform: types.PlatformAll, Code: "bad()", Expected: types.Expectation{Detected: true}},
		{ID: "c-2", Name: "clean", Platform: types.PlatformAll, Code: "good()", Expected: types.Expectation{Detected: false}},
		{ID: "c-3", Name: "missed", Platform: types.PlatformAll, Code: "subtle()", Expected: types.Expectation{Detected: true}},
	}
}

func TestCompareIdenticalVariants(t *testing.T) {
	comparator := &Comparator{Runner: Runner{Scheduler: Scheduler{Concurrency: 2}}}
	variants := []Variant{
		{Name: "a", Prompt: "prompt", Provider: scriptedProvider("openai")},
		{Name: "b", Prompt: "prompt", Provider: scriptedProvider("openai")},
	}

	report, err := comparator.Compare(context.Background(), variants, comparisonCases(), 3)
	require.NoError(t, err)

	require.Len(t, report.Variants, 2)
	require.Len(t, report.Deltas, 1)

	// Identical variants over deterministic responses: zero delta, all ties.
	d := report.Deltas[0]
	assert.Equal(t, "a", d.VariantA)
	assert.Equal(t, "b", d.VariantB)
	assert.InDelta(t, 0.0, d.MeanF1Delta, 1e-9)
	assert.Equal(t, 3, d.Samples)
	assert.Equal(t, 3, d.Ties)
	require.True(t, d.WinRateA.Valid)
	assert.Equal(t, 0.0, d.WinRateA.Value)
	assert.Equal(t, 0.0, d.WinRateB.Value)

	for _, v := range report.Variants {
		assert.Equal(t, 3, v.Repeats)
		require.Len(t, v.F1Series, 3)
		require.True(t, v.MeanF1.Valid)
		require.True(t, v.F1Variance.Valid)
		assert.InDelta(t, 0.0, v.F1Variance.Value, 1e-9)
		assert.Equal(t, 3, v.FirstRun.TotalCases)
	}

	assert.Equal(t, 3, report.Cases)
	assert.Equal(t, 3, report.Repeats)
	assert.NotEmpty(t, report.RunID)
}

func TestCompareWinRate(t *testing.T) {
	// Variant "weak" misses the flagged case on every run, so "strong" must
	// win every comparable repeat.
	weak := &stubProvider{
		name:  "openai",
		model: "test-model",
		fn: func(_ context.Context, _, _ string) (string, error) {
			return "No violations detected.", nil
		},
	}

	comparator := &Comparator{Runner: Runner{Scheduler: Scheduler{Concurrency: 1}}}
	variants := []Variant{
		{Name: "strong", Prompt: "p", Provider: scriptedProvider("openai")},
		{Name: "weak", Prompt: "p", Provider: weak},
	}

	report, err := comparator.Compare(context.Background(), variants, comparisonCases(), 2)
	require.NoError(t, err)

	require.Len(t, report.Deltas, 1)
	d := report.Deltas[0]
	// The weak variant never predicts positive, so its F1 is undefined and
	// no repeat is comparable.
	assert.Equal(t, 0, d.Samples)
	assert.False(t, d.WinRateA.Valid)
	assert.False(t, report.Variants[1].MeanF1.Valid)
	assert.True(t, report.Variants[0].MeanF1.Valid)
}

func TestCompareSingleVariant(t *testing.T) {
	comparator := &Comparator{Runner: Runner{Scheduler: Scheduler{Concurrency: 1}}}
	variants := []Variant{{Name: "only", Prompt: "p", Provider: scriptedProvider("ollama")}}

	report, err := comparator.Compare(context.Background(), variants, comparisonCases(), 1)
	require.NoError(t, err)

	assert.Len(t, report.Variants, 1)
	assert.Empty(t, report.Deltas)
}

func TestCompareNoVariants(t *testing.T) {
	comparator := &Comparator{Runner: Runner{Scheduler: Scheduler{}}}

	_, err := comparator.Compare(context.Background(), nil, comparisonCases(), 1)

	assert.Error(t, err)
}

func TestCompareCancelledBeforeFirstRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comparator := &Comparator{Runner: Runner{Scheduler: Scheduler{}}}
	variants := []Variant{{Name: "a", Prompt: "p", Provider: scriptedProvider("openai")}}

	_, err := comparator.Compare(ctx, variants, comparisonCases(), 3)

	assert.Error(t, err)
}

func TestRunOnceReportsProgress(t *testing.T) {
	var seen atomic.Int32
	runner := Runner{
		Scheduler: Scheduler{Concurrency: 2},
		Progress:  func(types.Outcome) { seen.Add(1) },
	}

	report := runner.RunOnce(context.Background(), Variant{
		Name:     "v",
		Prompt:   "p",
		Provider: scriptedProvider("openai"),
	}, comparisonCases())

	assert.Equal(t, int32(3), seen.Load())
	assert.Equal(t, 3, report.TotalCases)
	assert.Equal(t, "openai", report.Provider)
	assert.Equal(t, "test-model", report.Model)
	assert.Equal(t, "v", report.Variant)
}
