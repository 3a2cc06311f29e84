package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agusespa/promptgauge/internal/evaluation"
	"github.com/agusespa/promptgauge/internal/llm"
	"github.com/agusespa/promptgauge/internal/types"
	"github.com/agusespa/promptgauge/pkg/spinner"
)

var compareOpts struct {
	providerOpts
	selectionOpts
	promptFiles []string
	providers   []string
	repeats     int
	serial      bool
	concurrency int
	jsonOutput  string
	resultsDir  string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare prompt and provider variants against the identical test set",
	Long: `Runs the full evaluation pipeline once per variant (every prompt file crossed
with every provider) against the same selected test cases. With --repeats the
variant set is evaluated R times and the report includes per-variant mean and
variance of F1 plus pairwise win rates, separating true improvement from
run-to-run noise.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringArrayVar(&compareOpts.promptFiles, "prompt-file", nil, "prompt file to compare (repeatable, at least one required)")
	compareCmd.Flags().StringSliceVar(&compareOpts.providers, "provider", nil, "provider backends to compare (repeatable)")
	compareCmd.Flags().IntVar(&compareOpts.repeats, "repeats", 1, "number of repeat runs per variant")
	compareCmd.Flags().BoolVar(&compareOpts.serial, "serial", false, "run single-threaded for deterministic debugging")
	compareCmd.Flags().IntVar(&compareOpts.concurrency, "concurrency", evaluation.DefaultConcurrency, "max concurrent provider calls")
	compareCmd.Flags().StringVar(&compareOpts.jsonOutput, "json", "", "write the full comparison report as JSON to a file")
	compareCmd.Flags().StringVar(&compareOpts.resultsDir, "results-dir", "", "persist the comparison report under a results directory")
	addProviderFlags(compareCmd, &compareOpts.providerOpts)
	addSelectionFlags(compareCmd, &compareOpts.selectionOpts)
	_ = compareCmd.MarkFlagRequired("prompt-file")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	providers := compareOpts.providers
	if len(providers) == 0 {
		providers = []string{""} // resolved default provider
	}

	var variants []evaluation.Variant
	var firstPrompt string

	for _, pf := range compareOpts.promptFiles {
		prompt, stem, err := readPromptFile(pf)
		if err != nil {
			return err
		}
		if firstPrompt == "" {
			firstPrompt = prompt
		}

		for _, providerName := range providers {
			cfg, err := compareOpts.resolve(cmd, providerName)
			if err != nil {
				return err
			}
			provider, err := llm.NewProvider(cfg)
			if err != nil {
				return err
			}

			name := stem
			if len(providers) > 1 {
				name = stem + "/" + cfg.Provider
			}
			variants = append(variants, evaluation.Variant{
				Name:     name,
				Prompt:   prompt,
				Provider: llm.WithRetry(provider),
			})
		}
	}

	// Every variant runs against the identical test set: selection comes
	// from the first prompt's metadata unless flags override it.
	cases, err := compareOpts.selectCases(firstPrompt)
	if err != nil {
		return err
	}

	cfg, err := compareOpts.resolve(cmd, providers[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	banner("promptgauge comparison")
	fmt.Printf("Variants: %d, Repeats: %d, Cases: %d\n", len(variants), compareOpts.repeats, len(cases))

	concurrency := compareOpts.concurrency
	if compareOpts.serial {
		concurrency = 1
	}

	totalCalls := len(variants) * compareOpts.repeats * len(cases)
	var completed atomic.Int64
	sp := spinner.New(fmt.Sprintf("0/%d calls completed", totalCalls))
	sp.Start()
	defer sp.Stop()

	comparator := evaluation.Comparator{Runner: evaluation.Runner{
		Scheduler: evaluation.Scheduler{Concurrency: concurrency},
		Timeout:   cfg.Timeout,
		Progress: func(types.Outcome) {
			sp.Message(fmt.Sprintf("%d/%d calls completed", completed.Add(1), totalCalls))
		},
	}}

	report, err := comparator.Compare(ctx, variants, cases, compareOpts.repeats)
	sp.Stop()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(evaluation.RenderComparisonReport(report))

	if compareOpts.jsonOutput != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comparison report: %w", err)
		}
		if err := os.WriteFile(compareOpts.jsonOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON report to %s: %w", compareOpts.jsonOutput, err)
		}
	}
	if compareOpts.resultsDir != "" {
		path, err := evaluation.NewResultsManager(compareOpts.resultsDir).SaveComparison(report)
		if err != nil {
			return err
		}
		fmt.Printf("Results saved to: %s\n", path)
	}
	return nil
}
