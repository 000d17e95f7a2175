// Package providers builds ai.Generators by provider name.
package providers

import (
	"context"
	"fmt"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ai/anthropic"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ai/gemini"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ai/openai"
)

// New returns the generator for provider using key and model. An empty model
// selects the provider default.
func New(ctx context.Context, provider, key, model string) (ai.Generator, error) {
	switch provider {
	case ai.ProviderOpenAI:
		return openai.NewGenerator(key, model)
	case ai.ProviderAnthropic:
		return anthropic.NewGenerator(key, model)
	case ai.ProviderGemini:
		return gemini.NewGenerator(ctx, key, model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}

// DefaultModel returns the model used when the chain gives none.
func DefaultModel(provider string) string {
	switch provider {
	case ai.ProviderOpenAI:
		return openai.DefaultModel
	case ai.ProviderAnthropic:
		return anthropic.DefaultModel
	case ai.ProviderGemini:
		return gemini.DefaultModel
	}
	return ""
}
