package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeStatus records how an evaluation of a single test case ended.
type OutcomeStatus string

const (
	StatusOK OutcomeStatus = "ok"
	// StatusProviderError marks outcomes whose provider call failed; they
	// carry no prediction and are excluded from the confusion matrix.
	StatusProviderError OutcomeStatus = "provider_error"
	// StatusAmbiguous marks responses with no clear signal, classified
	// conservatively as not-detected.
	StatusAmbiguous OutcomeStatus = "ambiguous"
)

// Outcome is produced once per (test case, provider) pair and never mutated
// afterwards. Predicted is nil when the provider call failed.
type Outcome struct {
	TestID           string        `json:"test_id"`
	TestName         string        `json:"test_name"`
	Category         string        `json:"category"`
	Platform         Platform      `json:"platform"`
	Principle        string        `json:"principle,omitempty"`
	Severity         string        `json:"severity,omitempty"`
	Expected         bool          `json:"expected_detected"`
	Predicted        *bool         `json:"predicted_detected"`
	Status           OutcomeStatus `json:"status"`
	MatchedPrinciple string        `json:"matched_principle,omitempty"`
	MatchedSeverity  string        `json:"matched_severity,omitempty"`
	RawResponse      string        `json:"raw_response,omitempty"`
	Error            string        `json:"error,omitempty"`
	Duration         time.Duration `json:"duration_ns"`
}

// Correct reports whether the prediction matches the ground truth. Provider
// errors are never correct or incorrect; they don't count either way.
func (o Outcome) Correct() bool {
	return o.Predicted != nil && *o.Predicted == o.Expected
}

// Metric is a ratio that may be undefined when its denominator is zero.
// An invalid metric renders as "N/A" and marshals to JSON null, so reports
// never show a division artifact.
type Metric struct {
	Value float64
	Valid bool
}

func NewMetric(num, den float64) Metric {
	if den == 0 {
		return Metric{}
	}
	return Metric{Value: num / den, Valid: true}
}

func (m Metric) String() string {
	if !m.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", m.Value*100)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	if err := json.Unmarshal(data, &m.Value); err != nil {
		return err
	}
	m.Valid = true
	return nil
}

// Confusion holds the raw counts behind accuracy/precision/recall/F1.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

func (c Confusion) Total() int { return c.TP + c.FP + c.TN + c.FN }

// Add classifies one prediction into the matrix.
func (c *Confusion) Add(expected, predicted bool) {
	switch {
	case expected && predicted:
		c.TP++
	case !expected && predicted:
		c.FP++
	case !expected && !predicted:
		c.TN++
	default:
		c.FN++
	}
}

// CategoryMetrics is the confusion matrix and derived metrics restricted to
// the outcomes sharing one breakdown value (a platform, category, principle
// or severity).
type CategoryMetrics struct {
	Name      string    `json:"name"`
	Confusion Confusion `json:"confusion"`
	Errors    int       `json:"errors"`
	Accuracy  Metric    `json:"accuracy"`
	Precision Metric    `json:"precision"`
	Recall    Metric    `json:"recall"`
	F1        Metric    `json:"f1"`
}

// CaseAudit is one misclassified or errored case, kept verbatim so every
// disagreement can be inspected by hand.
type CaseAudit struct {
	TestID      string        `json:"test_id"`
	TestName    string        `json:"test_name"`
	Category    string        `json:"category"`
	Expected    bool          `json:"expected"`
	Predicted   *bool         `json:"predicted"`
	Status      OutcomeStatus `json:"status"`
	RawResponse string        `json:"raw_response,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// RunReport aggregates one complete evaluation run. It is written once at
// the end of the run and immutable thereafter.
type RunReport struct {
	RunID          string            `json:"run_id"`
	Variant        string            `json:"variant"`
	Provider       string            `json:"provider"`
	Model          string            `json:"model"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	TotalCases     int               `json:"total_cases"`
	ErrorCount     int               `json:"error_count"`
	AmbiguousCount int               `json:"ambiguous_count"`
	Confusion      Confusion         `json:"confusion"`
	Accuracy       Metric            `json:"accuracy"`
	Precision      Metric            `json:"precision"`
	Recall         Metric            `json:"recall"`
	F1             Metric            `json:"f1"`
	ByPlatform     []CategoryMetrics `json:"by_platform,omitempty"`
	ByCategory     []CategoryMetrics `json:"by_category,omitempty"`
	ByPrinciple    []CategoryMetrics `json:"by_principle,omitempty"`
	BySeverity     []CategoryMetrics `json:"by_severity,omitempty"`
	Misclassified  []CaseAudit       `json:"misclassified"`
	Errored        []CaseAudit       `json:"errored"`
	// Partial is set when cancellation stopped dispatch before every
	// selected case produced an outcome.
	Partial bool `json:"partial,omitempty"`
}

// VariantStats summarizes repeated runs of one variant.
type VariantStats struct {
	Name       string    `json:"name"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Repeats    int       `json:"repeats"`
	F1Series   []Metric  `json:"f1_series"`
	MeanF1     Metric    `json:"mean_f1"`
	F1Variance Metric    `json:"f1_variance"`
	F1StdDev   Metric    `json:"f1_std_dev"`
	FirstRun   RunReport `json:"first_run"`
}

// PairwiseDelta compares two variants across repeats. WinRateA is the
// fraction of comparable repeats in which A's F1 strictly exceeded B's;
// Samples counts repeats where both F1 values were defined.
type PairwiseDelta struct {
	VariantA    string  `json:"variant_a"`
	VariantB    string  `json:"variant_b"`
	MeanF1Delta float64 `json:"mean_f1_delta"`
	WinRateA    Metric  `json:"win_rate_a"`
	WinRateB    Metric  `json:"win_rate_b"`
	Ties        int     `json:"ties"`
	Samples     int     `json:"samples"`
}

// ComparisonReport holds one RunReport per variant plus cross-variant
// statistics over R repeats of the identical test set.
type ComparisonReport struct {
	RunID     string          `json:"run_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Repeats   int             `json:"repeats"`
	Cases     int             `json:"cases"`
	Variants  []VariantStats  `json:"variants"`
	Deltas    []PairwiseDelta `json:"deltas"`
}
