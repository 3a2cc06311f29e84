package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agusespa/promptgauge/internal/llm"
	"github.com/agusespa/promptgauge/internal/types"
)

// Variant pairs one prompt text with one provider. The comparator runs every
// variant against the identical test set.
type Variant struct {
	Name     string
	Prompt   string
	Provider llm.Provider
}

// Runner glues the scheduler, orchestrator and aggregator into one run of
// the pipeline.
type Runner struct {
	Scheduler Scheduler
	Timeout   time.Duration
	// Progress, when set, is called once per completed case. It may be
	// called concurrently from worker goroutines.
	Progress func(types.Outcome)
}

// RunOnce evaluates every case for one variant and reduces the outcomes into
// a RunReport.
func (r *Runner) RunOnce(ctx context.Context, v Variant, cases []types.TestCase) *types.RunReport {
	orch := NewOrchestrator(v.Provider, v.Prompt, r.Timeout)

	fn := orch.EvaluateCase
	if r.Progress != nil {
		inner := fn
		fn = func(ctx context.Context, tc types.TestCase) types.Outcome {
			outcome := inner(ctx, tc)
			r.Progress(outcome)
			return outcome
		}
	}

	start := time.Now()
	outcomes, _ := r.Scheduler.Run(ctx, cases, fn)
	return NewRunReport(v.Name, v.Provider.Name(), v.Provider.Model(), outcomes, start, time.Now(), len(cases))
}

// Comparator runs the full pipeline once per variant per repeat and computes
// cross-variant statistics. Model output is not deterministic even at low
// temperature, so a single run's comparison is a sample: repeats expose the
// mean, variance and win rate instead of a one-shot delta.
type Comparator struct {
	Runner Runner
}

func (c *Comparator) Compare(ctx context.Context, variants []Variant, cases []types.TestCase, repeats int) (*types.ComparisonReport, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants to compare")
	}
	if repeats < 1 {
		repeats = 1
	}

	report := &types.ComparisonReport{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Repeats:   repeats,
		Cases:     len(cases),
	}

	series := make([][]types.Metric, len(variants))
	firstRuns := make([]*types.RunReport, len(variants))

	for rep := 0; rep < repeats && ctx.Err() == nil; rep++ {
		for i, v := range variants {
			if ctx.Err() != nil {
				break
			}
			run := c.Runner.RunOnce(ctx, v, cases)
			series[i] = append(series[i], run.F1)
			if firstRuns[i] == nil {
				firstRuns[i] = run
			}
		}
	}

	for i, v := range variants {
		if firstRuns[i] == nil {
			return nil, fmt.Errorf("comparison cancelled before variant %s completed a run", v.Name)
		}
		valid := validValues(series[i])
		report.Variants = append(report.Variants, types.VariantStats{
			Name:       v.Name,
			Provider:   v.Provider.Name(),
			Model:      v.Provider.Model(),
			Repeats:    len(series[i]),
			F1Series:   series[i],
			MeanF1:     types.Metric{Value: calculateMean(valid), Valid: len(valid) > 0},
			F1Variance: types.Metric{Value: calculateVariance(valid), Valid: len(valid) > 0},
			F1StdDev:   types.Metric{Value: calculateStdDev(valid), Valid: len(valid) > 0},
			FirstRun:   *firstRuns[i],
		})
	}

	for i := range variants {
		for j := i + 1; j < len(variants); j++ {
			report.Deltas = append(report.Deltas, pairwise(report.Variants[i], report.Variants[j], series[i], series[j]))
		}
	}

	report.EndTime = time.Now()
	return report, nil
}

// pairwise compares two F1 series repeat by repeat. Repeats where either F1
// is undefined are skipped; Samples reports how many comparisons remained.
func pairwise(a, b types.VariantStats, seriesA, seriesB []types.Metric) types.PairwiseDelta {
	delta := types.PairwiseDelta{VariantA: a.Name, VariantB: b.Name}
	if a.MeanF1.Valid && b.MeanF1.Valid {
		delta.MeanF1Delta = a.MeanF1.Value - b.MeanF1.Value
	}

	n := min(len(seriesA), len(seriesB))
	winsA, winsB := 0, 0
	for r := 0; r < n; r++ {
		if !seriesA[r].Valid || !seriesB[r].Valid {
			continue
		}
		delta.Samples++
		switch {
		case seriesA[r].Value > seriesB[r].Value:
			winsA++
		case seriesB[r].Value > seriesA[r].Value:
			winsB++
		default:
			delta.Ties++
		}
	}
	delta.WinRateA = types.NewMetric(float64(winsA), float64(delta.Samples))
	delta.WinRateB = types.NewMetric(float64(winsB), float64(delta.Samples))
	return delta
}

func validValues(series []types.Metric) []float64 {
	var values []float64
	for _, m := range series {
		if m.Valid {
			values = append(values, m.Value)
		}
	}
	return values
}
