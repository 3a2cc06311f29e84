package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agusespa/promptgauge/internal/config"
	"github.com/agusespa/promptgauge/internal/suite"
	"github.com/agusespa/promptgauge/internal/types"
)

// providerOpts carries the explicit provider arguments; set flags take
// precedence over config file, environment, and built-in defaults.
type providerOpts struct {
	configFile  string
	model       string
	baseURL     string
	apiKey      string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

func addProviderFlags(cmd *cobra.Command, o *providerOpts) {
	cmd.Flags().StringVar(&o.configFile, "config", "", "path to config file (default: promptgauge.yaml if present)")
	cmd.Flags().StringVar(&o.model, "model", "", "model name override")
	cmd.Flags().StringVar(&o.baseURL, "base-url", "", "base URL override")
	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "API key override (prefer the provider's *_API_KEY env var)")
	cmd.Flags().Float64Var(&o.temperature, "temperature", 0, "sampling temperature override")
	cmd.Flags().IntVar(&o.maxTokens, "max-tokens", 0, "max response tokens override")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "per-call timeout override")
}

func (o *providerOpts) resolve(cmd *cobra.Command, provider string) (config.ProviderConfig, error) {
	ov := config.Overrides{
		Provider:  provider,
		BaseURL:   o.baseURL,
		Model:     o.model,
		APIKey:    o.apiKey,
		MaxTokens: o.maxTokens,
		Timeout:   o.timeout,
	}
	if cmd.Flags().Changed("temperature") {
		t := o.temperature
		ov.Temperature = &t
	}
	return config.Resolve(o.configFile, ov)
}

// selectionOpts narrows which test cases a run evaluates. Explicit flags
// override prompt metadata.
type selectionOpts struct {
	casesDir string
	platform string
	focus    []string
}

func addSelectionFlags(cmd *cobra.Command, o *selectionOpts) {
	cmd.Flags().StringVar(&o.casesDir, "cases", "evals/detection", "directory of *_test_cases.yaml documents")
	cmd.Flags().StringVar(&o.platform, "platform", "", "platform filter override (web, android, ios)")
	cmd.Flags().StringSliceVar(&o.focus, "focus", nil, "focus area override (comma-separated categories)")
}

// selectCases loads the suite and narrows it to the cases relevant to the
// prompt, using metadata from the prompt unless flags override it.
func (o *selectionOpts) selectCases(prompt string) ([]types.TestCase, error) {
	s, err := suite.Load(o.casesDir)
	if err != nil {
		return nil, err
	}

	filter := suite.NewFilter(suite.ParseMetadata(prompt), o.platform, o.focus)
	cases := filter.Apply(s.Cases)
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases in %s match platform=%q focus=%v", o.casesDir, filter.Platform, filter.Focus)
	}
	return cases, nil
}

func readPromptFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return string(data), stem, nil
}
