package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
)

const testKey = "sk-test-SENTINEL-0123456789"

func newServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	t.Parallel()

	var seen map[string]any
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Hi Acme,\nbody  "}}]
	}`, &seen)

	g, err := NewGenerator(testKey, "", option.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.Model())
	assert.Equal(t, ai.ProviderOpenAI, g.Provider())

	out, err := g.Generate(context.Background(), ai.Request{System: "sys", Prompt: "write", MaxTokens: 99})
	require.NoError(t, err)
	assert.Equal(t, "Hi Acme,\nbody", out)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.EqualValues(t, 99, seen["max_tokens"])
	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestGenerateClassifiesAuthFailure(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided: `+testKey+`", "type": "invalid_request_error", "code": "invalid_api_key"}}`, nil)

	g, err := NewGenerator(testKey, "gpt-5.2", option.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), ai.Request{Prompt: "write"})
	require.Error(t, err)

	var aerr *ai.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, ai.KindAuth, aerr.Kind)
	assert.Equal(t, http.StatusUnauthorized, aerr.StatusCode)
	assert.NotContains(t, err.Error(), testKey)
}

func TestGenerateEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`, nil)
	g, err := NewGenerator(testKey, "m", option.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), ai.Request{Prompt: "write"})
	assert.Equal(t, ai.KindMalformed, ai.KindOf(err))
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator("  ", "m")
	require.Error(t, err)
}
