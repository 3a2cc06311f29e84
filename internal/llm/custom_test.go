package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/promptgauge/internal/config"
)

func TestCustomEvaluate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req customRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "local-model", req.Model)
		assert.Equal(t, "review prompt", req.System)
		assert.Equal(t, "the code", req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response": "Violation found."}`))
	}))
	defer server.Close()

	p := NewCustomProvider(config.ProviderConfig{
		Provider: "custom",
		BaseURL:  server.URL,
		Model:    "local-model",
		APIKey:   "secret",
	})

	response, err := p.Evaluate(context.Background(), "review prompt", "the code")

	require.NoError(t, err)
	assert.Equal(t, "Violation found.", response)
	assert.Equal(t, "custom", p.Name())
	assert.Equal(t, "local-model", p.Model())
}

func TestCustomEvaluateOmitsAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"response": "ok"}`))
	}))
	defer server.Close()

	p := NewCustomProvider(config.ProviderConfig{Provider: "custom", BaseURL: server.URL})

	_, err := p.Evaluate(context.Background(), "sys", "code")

	require.NoError(t, err)
}

func TestCustomEvaluateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`forbidden`))
	}))
	defer server.Close()

	p := NewCustomProvider(config.ProviderConfig{Provider: "custom", BaseURL: server.URL})

	_, err := p.Evaluate(context.Background(), "sys", "code")

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, ErrAuth, callErr.Kind)
}
