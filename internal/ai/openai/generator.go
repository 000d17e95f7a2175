// Package openai implements ai.Generator on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
)

// DefaultModel is used when the chain names the provider without a model.
const DefaultModel = "gpt-4o-mini"

// Generator sends single-turn chat completions.
type Generator struct {
	client sdk.Client
	model  string
}

// NewGenerator returns a Generator. SDK retries are disabled; the enhancer
// owns retries. Extra options are appended, which lets tests point the client
// at a local server.
func NewGenerator(apiKey, model string, opts ...option.RequestOption) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Generator{
		client: sdk.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

// Generate returns the first choice of the completion.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, 2)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, sdk.SystemMessage(system))
	}
	messages = append(messages, sdk.UserMessage(req.Prompt))

	resp, err := g.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: sdk.Int(int64(req.Tokens())),
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", ai.FromStatus(ai.ProviderOpenAI, apiErr.StatusCode, err)
		}
		return "", ai.Wrap(ai.ProviderOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", ai.Wrap(ai.ProviderOpenAI, ai.ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ai.Wrap(ai.ProviderOpenAI, ai.ErrEmptyResponse)
	}
	return content, nil
}

func (g *Generator) Provider() string { return ai.ProviderOpenAI }

func (g *Generator) Model() string { return g.model }
