package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agusespa/promptgauge/internal/config"
)

// OpenAIProvider speaks the OpenAI chat-completions API. With a custom base
// URL it also covers OpenAI-compatible third-party hosts and local inference
// servers (llama.cpp, vLLM and friends).
type OpenAIProvider struct {
	name   string
	model  string
	client *openai.Client
	cfg    config.ProviderConfig
}

func NewOpenAIProvider(cfg config.ProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		name:   cfg.Provider,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) Evaluate(ctx context.Context, systemPrompt, code string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: code},
		},
		Temperature: float32(p.cfg.Temperature),
		MaxTokens:   p.cfg.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapErr(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", newCallError(p.name, ErrNetwork, fmt.Errorf("no choices returned in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) wrapErr(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newCallError(p.name, statusKind(apiErr.HTTPStatusCode, apiErr.Message), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newCallError(p.name, statusKind(reqErr.HTTPStatusCode, reqErr.Error()), err)
	}
	return newCallError(p.name, transportKind(ctx, err), err)
}
