// Package ai defines the text generation contract shared by the LLM providers.
package ai

import "context"

// Provider names accepted in the failover chain.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// DefaultMaxTokens bounds a single completion.
const DefaultMaxTokens = 400

// Request is one single-turn completion.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Tokens returns MaxTokens or the default.
func (r Request) Tokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Generator produces text for a prompt. Implementations do not retry; the
// caller owns retries and timeouts.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}

// KnownProvider reports whether name is a supported provider.
func KnownProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}
