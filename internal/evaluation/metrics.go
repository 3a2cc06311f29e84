package evaluation

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agusespa/promptgauge/internal/types"
)

// NewRunReport reduces a complete outcome set into a RunReport. Provider
// errors are excluded from the confusion matrix but counted and listed
// separately; they are never folded into false negatives. selected is the
// number of cases the run intended to evaluate, so a cancelled run is marked
// partial instead of silently shrinking the denominator.
func NewRunReport(variant, provider, model string, outcomes []types.Outcome, start, end time.Time, selected int) *types.RunReport {
	r := &types.RunReport{
		RunID:      uuid.NewString(),
		Variant:    variant,
		Provider:   provider,
		Model:      model,
		StartTime:  start,
		EndTime:    end,
		TotalCases: len(outcomes),
		Partial:    len(outcomes) < selected,
	}

	for _, o := range outcomes {
		if o.Status == types.StatusProviderError {
			r.ErrorCount++
			r.Errored = append(r.Errored, audit(o))
			continue
		}
		if o.Status == types.StatusAmbiguous {
			r.AmbiguousCount++
		}
		r.Confusion.Add(o.Expected, *o.Predicted)
		if !o.Correct() {
			r.Misclassified = append(r.Misclassified, audit(o))
		}
	}

	r.Accuracy, r.Precision, r.Recall, r.F1 = deriveMetrics(r.Confusion)

	r.ByPlatform = byDimension(outcomes, func(o types.Outcome) string { return string(o.Platform) })
	r.ByCategory = byDimension(outcomes, func(o types.Outcome) string { return o.Category })
	r.ByPrinciple = byDimension(outcomes, func(o types.Outcome) string { return o.Principle })
	r.BySeverity = byDimension(outcomes, func(o types.Outcome) string { return o.Severity })

	return r
}

func audit(o types.Outcome) types.CaseAudit {
	return types.CaseAudit{
		TestID:      o.TestID,
		TestName:    o.TestName,
		Category:    o.Category,
		Expected:    o.Expected,
		Predicted:   o.Predicted,
		Status:      o.Status,
		RawResponse: o.RawResponse,
		Error:       o.Error,
	}
}

// deriveMetrics computes the zero-guarded metric set: an undefined ratio is
// N/A, never a division fault.
func deriveMetrics(c types.Confusion) (accuracy, precision, recall, f1 types.Metric) {
	accuracy = types.NewMetric(float64(c.TP+c.TN), float64(c.Total()))
	precision = types.NewMetric(float64(c.TP), float64(c.TP+c.FP))
	recall = types.NewMetric(float64(c.TP), float64(c.TP+c.FN))
	if precision.Valid && recall.Valid && precision.Value+recall.Value > 0 {
		f1 = types.Metric{
			Value: 2 * precision.Value * recall.Value / (precision.Value + recall.Value),
			Valid: true,
		}
	}
	return accuracy, precision, recall, f1
}

// byDimension applies the overall formulas to the subset of outcomes
// sharing one breakdown value. Outcomes with an empty value (e.g. no
// expected severity) are left out of that breakdown.
func byDimension(outcomes []types.Outcome, key func(types.Outcome) string) []types.CategoryMetrics {
	groups := make(map[string]*types.CategoryMetrics)

	for _, o := range outcomes {
		k := key(o)
		if k == "" {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &types.CategoryMetrics{Name: k}
			groups[k] = g
		}
		if o.Status == types.StatusProviderError {
			g.Errors++
			continue
		}
		g.Confusion.Add(o.Expected, *o.Predicted)
	}

	result := make([]types.CategoryMetrics, 0, len(groups))
	for _, g := range groups {
		g.Accuracy, g.Precision, g.Recall, g.F1 = deriveMetrics(g.Confusion)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
