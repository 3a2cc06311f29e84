package evaluation

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agusespa/promptgauge/internal/llm"
)

const enhancementInstruction = `You are an expert in engineering standards across security, accessibility and testing.

Enhance the code review prompt you are given with additional specific detection patterns while preserving ALL of its original content and maintaining accuracy:
- add current OWASP and WCAG violation patterns for real vulnerabilities, not localhost or test code
- add precision guidance: test files, examples and dev URLs are NOT production violations
- add concrete before/after code examples for the most common violations

Return only the enhanced prompt text.`

// EnhancePrompt runs the prompt under test through the provider once to
// layer in current detection patterns, caching the result by content hash so
// repeated runs of the same prompt skip the extra call. The returned bool
// reports a cache hit.
func EnhancePrompt(ctx context.Context, provider llm.Provider, prompt, cacheDir string) (string, bool, error) {
	sum := md5.Sum([]byte(prompt))
	cacheFile := filepath.Join(cacheDir, "enhanced_"+hex.EncodeToString(sum[:])+".txt")

	if data, err := os.ReadFile(cacheFile); err == nil && len(data) > 0 {
		return string(data), true, nil
	}

	enhanced, err := provider.Evaluate(ctx, enhancementInstruction, prompt)
	if err != nil {
		return "", false, fmt.Errorf("failed to enhance prompt: %w", err)
	}

	if err := os.MkdirAll(cacheDir, 0755); err == nil {
		if err := os.WriteFile(cacheFile, []byte(enhanced), 0644); err != nil {
			slog.Warn("failed to cache enhanced prompt", "file", cacheFile, "error", err)
		}
	}

	return enhanced, false, nil
}
