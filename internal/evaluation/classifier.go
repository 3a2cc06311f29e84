package evaluation

import (
	"regexp"
	"strings"
)

// Verdict is the structured reading of a free-text model response.
type Verdict struct {
	Detected  bool
	Ambiguous bool
	Principle string
	Severity  string
}

// Explicit all-clear statements. These win over any ambiguous mention of a
// violation elsewhere in the response.
var negativeMarkers = []string{
	"no violations",
	"no violation",
	"no issues found",
	"no issues detected",
	"no issues were found",
	"no problems found",
	"no concerns",
	"does not violate",
	"doesn't violate",
	"looks good",
	"lgtm",
	"approved",
	"fully compliant",
	"code is compliant",
	"nothing to flag",
}

// A single strong marker is enough to call a violation.
var strongMarkers = []string{
	"violation",
	"vulnerability",
	"vulnerabilities",
	"security risk",
	"non-compliant",
	"issue found",
	"issues found",
	"anti-pattern",
	"antipattern",
}

// Weak indicators need corroboration: two or more distinct hits count as a
// detection, mirroring the indicator heuristic the suite was labeled against.
var weakIndicators = []string{
	"issue",
	"problem",
	"error",
	"warning",
	"fix",
	"should",
	"must",
	"missing",
	"incorrect",
}

// Ordered highest first so the extracted severity is the worst one mentioned.
var severityKeywords = []string{"critical", "high", "medium", "warning", "low", "minor"}

var severityPattern = regexp.MustCompile(`\b(critical|high|medium|warning|low|minor)\b`)

var principlePattern = regexp.MustCompile(`\b(security|accessibility|testing|architecture|documentation|localization|performance|compatibility|code[ _]quality|design|maintainability)\b`)

// Classify maps a raw model response to a verdict. It is a pure function of
// the response text: the same text always yields the same verdict, so runs
// are reproducible given fixed model output. A response with no signal at
// all is conservatively not-detected and flagged ambiguous for audit.
func Classify(response string) Verdict {
	lower := strings.ToLower(response)

	verdict := Verdict{
		Principle: matchPrinciple(lower),
		Severity:  matchSeverity(lower),
	}

	if containsAny(lower, negativeMarkers) {
		return verdict
	}

	if containsAny(lower, strongMarkers) {
		verdict.Detected = true
		return verdict
	}

	hits := 0
	for _, indicator := range weakIndicators {
		if strings.Contains(lower, indicator) {
			hits++
		}
	}
	if hits >= 2 {
		verdict.Detected = true
		return verdict
	}

	verdict.Ambiguous = true
	return verdict
}

func matchSeverity(lower string) string {
	found := severityPattern.FindAllString(lower, -1)
	if len(found) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(found))
	for _, f := range found {
		seen[f] = true
	}
	for _, sev := range severityKeywords {
		if seen[sev] {
			return sev
		}
	}
	return ""
}

func matchPrinciple(lower string) string {
	match := principlePattern.FindString(lower)
	return strings.ReplaceAll(match, " ", "_")
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
