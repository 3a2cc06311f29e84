package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agusespa/promptgauge/internal/evaluation"
	"github.com/agusespa/promptgauge/internal/llm"
	"github.com/agusespa/promptgauge/internal/types"
)

var evalOpts struct {
	providerOpts
	selectionOpts
	promptFile  string
	provider    string
	serial      bool
	concurrency int
	enhanced    bool
	showDiff    bool
	output      string
	jsonOutput  string
	resultsDir  string
	cacheDir    string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one prompt against the test suite",
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalOpts.promptFile, "prompt-file", "", "file containing the prompt under test (required)")
	evalCmd.Flags().StringVar(&evalOpts.provider, "provider", "", "provider backend (openai, compatible, anthropic, ollama, custom)")
	evalCmd.Flags().BoolVar(&evalOpts.serial, "serial", false, "run single-threaded for deterministic debugging")
	evalCmd.Flags().IntVar(&evalOpts.concurrency, "concurrency", evaluation.DefaultConcurrency, "max concurrent provider calls")
	evalCmd.Flags().BoolVar(&evalOpts.enhanced, "enhanced", false, "enhance the prompt with current detection patterns before evaluating")
	evalCmd.Flags().BoolVar(&evalOpts.showDiff, "show-diff", false, "print original and enhanced prompt excerpts")
	evalCmd.Flags().StringVar(&evalOpts.output, "output", "", "write the text report to a file")
	evalCmd.Flags().StringVar(&evalOpts.jsonOutput, "json", "", "write the full report as JSON to a file")
	evalCmd.Flags().StringVar(&evalOpts.resultsDir, "results-dir", "", "persist the report under a results directory")
	evalCmd.Flags().StringVar(&evalOpts.cacheDir, "cache-dir", ".cache", "cache directory for enhanced prompts")
	addProviderFlags(evalCmd, &evalOpts.providerOpts)
	addSelectionFlags(evalCmd, &evalOpts.selectionOpts)
	_ = evalCmd.MarkFlagRequired("prompt-file")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	prompt, variantName, err := readPromptFile(evalOpts.promptFile)
	if err != nil {
		return err
	}

	cases, err := evalOpts.selectCases(prompt)
	if err != nil {
		return err
	}

	cfg, err := evalOpts.resolve(cmd, evalOpts.provider)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}
	provider = llm.WithRetry(provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if evalOpts.enhanced {
		prompt = enhancePrompt(ctx, provider, prompt)
	}

	banner("promptgauge evaluation")
	fmt.Printf("Provider: %s (%s)\n", provider.Name(), provider.Model())
	fmt.Printf("Cases: %d\n\n", len(cases))

	concurrency := evalOpts.concurrency
	if evalOpts.serial {
		concurrency = 1
	}

	var mu sync.Mutex
	var completed atomic.Int64
	total := len(cases)
	progress := func(o types.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		n := completed.Add(1)
		switch {
		case o.Status == types.StatusProviderError:
			fmt.Printf("  %s [%d/%d] %s: %s\n", warnStyle.Render("!"), n, total, o.TestID, o.Error)
		case o.Correct():
			fmt.Printf("  %s [%d/%d] %s %s\n", okStyle.Render("✓"), n, total, o.TestID, o.TestName)
		default:
			fmt.Printf("  %s [%d/%d] %s %s\n", failStyle.Render("✗"), n, total, o.TestID, o.TestName)
		}
	}

	runner := evaluation.Runner{
		Scheduler: evaluation.Scheduler{Concurrency: concurrency},
		Timeout:   cfg.Timeout,
		Progress:  progress,
	}

	report := runner.RunOnce(ctx, evaluation.Variant{
		Name:     variantName,
		Prompt:   prompt,
		Provider: provider,
	}, cases)

	fmt.Println()
	fmt.Println(evaluation.RenderRunReport(report))

	return writeRunArtifacts(report)
}

func enhancePrompt(ctx context.Context, provider llm.Provider, prompt string) string {
	enhanced, cached, err := evaluation.EnhancePrompt(ctx, provider, prompt, evalOpts.cacheDir)
	if err != nil {
		fmt.Printf("Warning: enhancement failed, using original prompt: %v\n", err)
		return prompt
	}
	if cached {
		fmt.Println("Using cached enhanced prompt")
	}
	if evalOpts.showDiff {
		fmt.Println("\n--- Original prompt (first 500 chars) ---")
		fmt.Println(head(prompt, 500))
		fmt.Println("\n--- Enhanced prompt (first 500 chars) ---")
		fmt.Println(head(enhanced, 500))
		fmt.Println()
	}
	return enhanced
}

func writeRunArtifacts(report *types.RunReport) error {
	if evalOpts.output != "" {
		if err := os.WriteFile(evalOpts.output, []byte(evaluation.RenderRunReport(report)), 0644); err != nil {
			return fmt.Errorf("failed to write report to %s: %w", evalOpts.output, err)
		}
	}
	if evalOpts.jsonOutput != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := os.WriteFile(evalOpts.jsonOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON report to %s: %w", evalOpts.jsonOutput, err)
		}
	}
	if evalOpts.resultsDir != "" {
		path, err := evaluation.NewResultsManager(evalOpts.resultsDir).SaveRun(report)
		if err != nil {
			return err
		}
		fmt.Printf("Results saved to: %s\n", path)
	}
	return nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
