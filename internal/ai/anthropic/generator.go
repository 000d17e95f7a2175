// Package anthropic implements ai.Generator on the Anthropic messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
)

// DefaultModel is used when the chain names the provider without a model.
const DefaultModel = "claude-sonnet-4-6"

// Generator sends single-turn messages.
type Generator struct {
	client sdk.Client
	model  string
}

// NewGenerator returns a Generator with SDK retries disabled.
func NewGenerator(apiKey, model string, opts ...option.RequestOption) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
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

// Generate joins the text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: int64(req.Tokens()),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", ai.FromStatus(ai.ProviderAnthropic, apiErr.StatusCode, err)
		}
		return "", ai.Wrap(ai.ProviderAnthropic, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		b.WriteString(block.Text)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ai.Wrap(ai.ProviderAnthropic, ai.ErrEmptyResponse)
	}
	return out, nil
}

func (g *Generator) Provider() string { return ai.ProviderAnthropic }

func (g *Generator) Model() string { return g.model }
