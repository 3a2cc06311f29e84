package evaluation

import (
	"fmt"
	"strings"

	"github.com/agusespa/promptgauge/internal/types"
)

const rawResponseExcerpt = 200

// RenderRunReport renders a run as plain structured text. The full raw
// responses live in the JSON document; here they are excerpted so the report
// stays readable while every disagreement remains auditable.
func RenderRunReport(r *types.RunReport) string {
	var b strings.Builder

	b.WriteString("# Prompt Evaluation Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Provider: %s (%s)\n", r.Provider, r.Model)
	if r.Variant != "" {
		fmt.Fprintf(&b, "Variant: %s\n", r.Variant)
	}
	if r.Partial {
		b.WriteString("\n> Partial run: cancellation stopped dispatch before every case was evaluated.\n")
	}

	b.WriteString("\n## Overall Results\n")
	fmt.Fprintf(&b, "- Total Cases: %d\n", r.TotalCases)
	fmt.Fprintf(&b, "- Classified: %d\n", r.TotalCases-r.ErrorCount)
	fmt.Fprintf(&b, "- Provider Errors: %d\n", r.ErrorCount)
	fmt.Fprintf(&b, "- Ambiguous Responses: %d\n", r.AmbiguousCount)
	fmt.Fprintf(&b, "- Confusion: TP=%d FP=%d TN=%d FN=%d\n", r.Confusion.TP, r.Confusion.FP, r.Confusion.TN, r.Confusion.FN)
	fmt.Fprintf(&b, "- **Accuracy: %s**\n", r.Accuracy)
	fmt.Fprintf(&b, "- **Precision: %s**\n", r.Precision)
	fmt.Fprintf(&b, "- **Recall: %s**\n", r.Recall)
	fmt.Fprintf(&b, "- **F1 Score: %s**\n", r.F1)

	renderBreakdown(&b, "Results by Category", r.ByCategory)
	renderBreakdown(&b, "Results by Platform", r.ByPlatform)
	renderBreakdown(&b, "Results by Principle", r.ByPrinciple)
	renderBreakdown(&b, "Results by Severity", r.BySeverity)

	if len(r.Misclassified) > 0 {
		fmt.Fprintf(&b, "\n## Misclassified Cases (%d)\n", len(r.Misclassified))
		for _, c := range r.Misclassified {
			fmt.Fprintf(&b, "- %s: %s (expected: %v, predicted: %s, status: %s)\n",
				c.TestID, c.TestName, c.Expected, formatPredicted(c.Predicted), c.Status)
			fmt.Fprintf(&b, "  response: %s\n", excerpt(c.RawResponse, rawResponseExcerpt))
		}
	}

	if len(r.Errored) > 0 {
		fmt.Fprintf(&b, "\n## Provider Errors (%d)\n", len(r.Errored))
		for _, c := range r.Errored {
			fmt.Fprintf(&b, "- %s: %s - %s\n", c.TestID, c.TestName, c.Error)
		}
	}

	return b.String()
}

// RenderComparisonReport renders cross-variant statistics plus a compact
// overall block per variant.
func RenderComparisonReport(c *types.ComparisonReport) string {
	var b strings.Builder

	b.WriteString("# Prompt Comparison Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", c.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Variants: %d, Repeats: %d, Cases: %d\n", len(c.Variants), c.Repeats, c.Cases)

	b.WriteString("\n## Variants\n")
	b.WriteString("| Variant | Provider | Model | Repeats | Mean F1 | Std Dev | Variance |\n")
	b.WriteString("|---------|----------|-------|---------|---------|---------|----------|\n")
	for _, v := range c.Variants {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s |\n",
			v.Name, v.Provider, v.Model, v.Repeats, v.MeanF1, formatSpread(v.F1StdDev), formatSpread(v.F1Variance))
	}

	if len(c.Deltas) > 0 {
		b.WriteString("\n## Pairwise Comparison\n")
		for _, d := range c.Deltas {
			fmt.Fprintf(&b, "- %s vs %s: mean F1 delta %+.3f, win rate %s / %s, ties %d (over %d comparable repeats)\n",
				d.VariantA, d.VariantB, d.MeanF1Delta, d.WinRateA, d.WinRateB, d.Ties, d.Samples)
		}
	}

	for _, v := range c.Variants {
		r := v.FirstRun
		fmt.Fprintf(&b, "\n## Variant: %s (first run)\n", v.Name)
		fmt.Fprintf(&b, "- Cases: %d, Errors: %d, Ambiguous: %d\n", r.TotalCases, r.ErrorCount, r.AmbiguousCount)
		fmt.Fprintf(&b, "- Confusion: TP=%d FP=%d TN=%d FN=%d\n", r.Confusion.TP, r.Confusion.FP, r.Confusion.TN, r.Confusion.FN)
		fmt.Fprintf(&b, "- Accuracy: %s, Precision: %s, Recall: %s, F1: %s\n", r.Accuracy, r.Precision, r.Recall, r.F1)
	}

	return b.String()
}

func renderBreakdown(b *strings.Builder, title string, groups []types.CategoryMetrics) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", title)
	b.WriteString("| Name | Cases | Errors | Accuracy | Precision | Recall | F1 |\n")
	b.WriteString("|------|-------|--------|----------|-----------|--------|----|\n")
	for _, g := range groups {
		fmt.Fprintf(b, "| %s | %d | %d | %s | %s | %s | %s |\n",
			g.Name, g.Confusion.Total()+g.Errors, g.Errors, g.Accuracy, g.Precision, g.Recall, g.F1)
	}
}

func formatPredicted(p *bool) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%v", *p)
}

func formatSpread(m types.Metric) string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", m.Value)
}

func excerpt(s string, n int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
