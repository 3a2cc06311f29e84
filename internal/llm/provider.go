package llm

import "context"

// Provider is the uniform contract over AI backends. Evaluate sends the
// prompt under test as system content and the code snippet as user content,
// returning the raw model response. Failures are always a *CallError so
// callers can handle retry/abort uniformly across backends.
type Provider interface {
	Name() string
	Model() string
	Evaluate(ctx context.Context, systemPrompt, code string) (string, error)
}

var SupportedProviders = []string{"openai", "compatible", "anthropic", "ollama", "custom"}
