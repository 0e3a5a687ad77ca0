package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompatibleProvider implements Provider for OpenAI-compatible APIs.
// This supports services like OpenRouter, Azure OpenAI, Ollama, etc.
type CompatibleProvider struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewCompatibleProvider creates a new OpenAI-compatible provider.
func NewCompatibleProvider(cfg Config) (*CompatibleProvider, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	opts := append(clientOptions(cfg), option.WithBaseURL(cfg.BaseURL))
	return &CompatibleProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider name.
func (p *CompatibleProvider) Name() string {
	return ProviderCompatible
}

// Complete generates a response without streaming.
func (p *CompatibleProvider) Complete(ctx context.Context, systemPrompt, prefix, content string) (Completion, error) {
	params := chatParams(p.model, systemPrompt, prefix, content)
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	params.Temperature = openai.Float(p.temperature)

	// Explicitly disable reasoning for routers that enable it by default
	resp, err := p.client.Chat.Completions.New(ctx, params, option.WithJSONSet("reasoning", map[string]interface{}{
		"enabled": false,
	}))
	if err != nil {
		return Completion{}, wrapError(ProviderCompatible, err)
	}
	return chatCompletion(resp)
}
