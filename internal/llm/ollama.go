package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agusespa/promptgauge/internal/config"
)

// OllamaProvider speaks the native ollama generate API.
type OllamaProvider struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaProvider(cfg config.ProviderConfig) *OllamaProvider {
	return &OllamaProvider{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Model() string { return p.model }

func (p *OllamaProvider) Evaluate(ctx context.Context, systemPrompt, code string) (string, error) {
	reqBody := ollamaRequest{
		Model:  p.model,
		System: systemPrompt,
		Prompt: code,
		Stream: false,
		Options: map[string]any{
			"temperature": p.temperature,
			"num_predict": p.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", newCallError(p.Name(), transportKind(ctx, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newCallError(p.Name(), transportKind(ctx, err), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		kind := statusKind(resp.StatusCode, string(body))
		return "", newCallError(p.Name(), kind, fmt.Errorf("ollama request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return ollamaResp.Response, nil
}
