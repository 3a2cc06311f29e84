package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agusespa/promptgauge/internal/types"
)

// ResultsManager persists reports under a results directory.
type ResultsManager struct {
	resultsDir string
}

func NewResultsManager(resultsDir string) *ResultsManager {
	return &ResultsManager{resultsDir: resultsDir}
}

func (rm *ResultsManager) SaveRun(r *types.RunReport) (string, error) {
	filename := fmt.Sprintf("eval_%s_%s_%d.json",
		sanitizeName(r.Provider), sanitizeName(r.Model), r.StartTime.Unix())
	return rm.write(filename, r)
}

func (rm *ResultsManager) SaveComparison(c *types.ComparisonReport) (string, error) {
	filename := fmt.Sprintf("compare_%dvariants_%druns_%d.json",
		len(c.Variants), c.Repeats, c.StartTime.Unix())
	return rm.write(filename, c)
}

func (rm *ResultsManager) write(filename string, v any) (string, error) {
	if err := os.MkdirAll(rm.resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory at %s: %w", rm.resultsDir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	path := filepath.Join(rm.resultsDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results file to %s: %w", path, err)
	}
	return path, nil
}

func sanitizeName(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
}
