package suite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agusespa/promptgauge/internal/types"
)

// Suite holds every test case that loaded successfully, grouped by the
// category derived from its document filename.
type Suite struct {
	Cases        []types.TestCase
	Categories   []string
	SkippedFiles []string
}

type document struct {
	TestCases []types.TestCase `yaml:"test_cases"`
}

// Load reads all *_test_cases.yaml documents under dir. A malformed or
// unreadable document is skipped with a warning and the run continues; only
// a suite with zero usable cases is a fatal error.
func Load(dir string) (*Suite, error) {
	pattern := filepath.Join(dir, "*_test_cases.yaml")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob test case documents %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no test case documents found in %s", dir)
	}
	sort.Strings(files)

	s := &Suite{}
	seen := make(map[string]string)
	categories := make(map[string]bool)

	for _, file := range files {
		category := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(file), ".yaml"), "_test_cases")

		data, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("skipping unreadable test case document", "file", file, "error", err)
			s.SkippedFiles = append(s.SkippedFiles, file)
			continue
		}

		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			slog.Warn("skipping malformed test case document", "file", file, "error", err)
			s.SkippedFiles = append(s.SkippedFiles, file)
			continue
		}

		for _, tc := range doc.TestCases {
			if tc.ID == "" || tc.Code == "" {
				slog.Warn("skipping test case without id or code", "file", file, "name", tc.Name)
				continue
			}
			if prev, ok := seen[tc.ID]; ok {
				slog.Warn("skipping duplicate test case id", "id", tc.ID, "file", file, "first_seen", prev)
				continue
			}
			if tc.Platform == "" {
				tc.Platform = types.PlatformAll
			}
			if !tc.Platform.Valid() {
				slog.Warn("skipping test case with unknown platform", "id", tc.ID, "platform", tc.Platform)
				continue
			}
			tc.Category = category
			seen[tc.ID] = file
			categories[category] = true
			s.Cases = append(s.Cases, tc)
		}
	}

	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("no usable test cases loaded from %s", dir)
	}

	for c := range categories {
		s.Categories = append(s.Categories, c)
	}
	sort.Strings(s.Categories)

	return s, nil
}
