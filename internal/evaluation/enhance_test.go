package evaluation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancePromptCachesByContent(t *testing.T) {
	cacheDir := t.TempDir()
	var calls atomic.Int32
	provider := &stubProvider{
		name:  "openai",
		model: "gpt-4o",
		fn: func(_ context.Context, _, prompt string) (string, error) {
			calls.Add(1)
			return "enhanced: " + prompt, nil
		},
	}

	first, cached, err := EnhancePrompt(context.Background(), provider, "base prompt", cacheDir)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "enhanced: base prompt", first)

	second, cached, err := EnhancePrompt(context.Background(), provider, "base prompt", cacheDir)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	// A different prompt misses the cache.
	_, cached, err = EnhancePrompt(context.Background(), provider, "other prompt", cacheDir)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEnhancePromptProviderError(t *testing.T) {
	provider := &stubProvider{name: "openai", model: "gpt-4o", err: errors.New("boom")}

	_, _, err := EnhancePrompt(context.Background(), provider, "prompt", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enhance prompt")
}
