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

// CustomProvider posts to a plain JSON endpoint for backends that speak
// neither the OpenAI nor the Anthropic wire format. The endpoint receives
// {"model", "system", "prompt"} and must answer {"response": "..."}.
type CustomProvider struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

type customRequest struct {
	Model  string `json:"model,omitempty"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

type customResponse struct {
	Response string `json:"response"`
}

func NewCustomProvider(cfg config.ProviderConfig) *CustomProvider {
	return &CustomProvider{
		endpoint: cfg.BaseURL,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{},
	}
}

func (p *CustomProvider) Name() string { return "custom" }

func (p *CustomProvider) Model() string { return p.model }

func (p *CustomProvider) Evaluate(ctx context.Context, systemPrompt, code string) (string, error) {
	reqBody := customRequest{
		Model:  p.model,
		System: systemPrompt,
		Prompt: code,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

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
		return "", newCallError(p.Name(), kind, fmt.Errorf("custom endpoint request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var customResp customResponse
	if err := json.Unmarshal(body, &customResp); err != nil {
		return "", newCallError(p.Name(), ErrNetwork, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return customResp.Response, nil
}
