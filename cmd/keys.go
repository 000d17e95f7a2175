package cmd

import (
	"fmt"
	"strings"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
	"github.com/orestes-garcia-martinez/careerclaw/internal/enhance"
	"github.com/orestes-garcia-martinez/careerclaw/internal/secrets"
)

// resolveKeys loads every configured provider key. Unset keys are left out;
// a key file that cannot be read is an error. The legacy single key fills the
// slot of llm.provider (anthropic by default) unless that provider has its
// own key.
func resolveKeys(keys *KeysConfig, settings *enhance.Settings) (enhance.Keys, error) {
	out := enhance.Keys{}
	if keys == nil {
		return out, nil
	}

	sources := []struct {
		provider string
		src      secrets.Source
	}{
		{ai.ProviderOpenAI, secrets.Source{Name: "openai api key", Value: keys.OpenAI, File: keys.OpenAIFile, Optional: true}},
		{ai.ProviderAnthropic, secrets.Source{Name: "anthropic api key", Value: keys.Anthropic, File: keys.AnthropicFile, Optional: true}},
		{ai.ProviderGemini, secrets.Source{Name: "gemini api key", Value: keys.Gemini, File: keys.GeminiFile, Optional: true}},
	}
	for _, s := range sources {
		key, err := secrets.Load(s.src)
		if err != nil {
			return nil, err
		}
		if key != "" {
			out[s.provider] = key
		}
	}

	legacy, err := secrets.Load(secrets.Source{Name: "llm api key", Value: keys.LLM, File: keys.LLMFile, Optional: true})
	if err != nil {
		return nil, err
	}
	if legacy == "" {
		return out, nil
	}

	provider := ai.ProviderAnthropic
	if settings != nil && strings.TrimSpace(settings.Provider) != "" {
		provider = strings.ToLower(strings.TrimSpace(settings.Provider))
	}
	if !ai.KnownProvider(provider) {
		return nil, fmt.Errorf("unsupported llm provider %q for the legacy key", provider)
	}
	if _, ok := out[provider]; !ok {
		out[provider] = legacy
	}
	return out, nil
}
