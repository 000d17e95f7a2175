package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/orestes-garcia-martinez/careerclaw/internal/enhance"
)

func TestResolveKeys(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "gemini.key")
	if err := os.WriteFile(keyFile, []byte("  gm-from-file\n"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	tests := []struct {
		name     string
		keys     *KeysConfig
		settings *enhance.Settings
		want     enhance.Keys
	}{
		{
			name: "nothing configured",
			keys: &KeysConfig{},
			want: enhance.Keys{},
		},
		{
			name: "per provider keys",
			keys: &KeysConfig{OpenAI: "sk-openai", Anthropic: " sk-ant ", GeminiFile: keyFile},
			want: enhance.Keys{"openai": "sk-openai", "anthropic": "sk-ant", "gemini": "gm-from-file"},
		},
		{
			name: "legacy key defaults to anthropic",
			keys: &KeysConfig{LLM: "sk-legacy"},
			want: enhance.Keys{"anthropic": "sk-legacy"},
		},
		{
			name:     "legacy key follows provider",
			keys:     &KeysConfig{LLM: "sk-legacy"},
			settings: &enhance.Settings{Provider: "OpenAI"},
			want:     enhance.Keys{"openai": "sk-legacy"},
		},
		{
			name: "provider key wins over legacy",
			keys: &KeysConfig{Anthropic: "sk-ant", LLM: "sk-legacy"},
			want: enhance.Keys{"anthropic": "sk-ant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveKeys(tt.keys, tt.settings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveKeysErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.key")
	if _, err := resolveKeys(&KeysConfig{OpenAIFile: missing}, nil); err == nil {
		t.Fatalf("expected error for a missing key file")
	}

	_, err := resolveKeys(&KeysConfig{LLM: "sk-secret-value"}, &enhance.Settings{Provider: "cohere"})
	if err == nil {
		t.Fatalf("expected error for an unknown provider")
	}
	if strings.Contains(err.Error(), "sk-secret-value") {
		t.Fatalf("error leaks the key: %v", err)
	}
}

func TestResolveKeysNilConfig(t *testing.T) {
	got, err := resolveKeys(nil, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty keys, got %v, %v", got, err)
	}
}

func TestConfigDumpOmitsKeys(t *testing.T) {
	cfg := &Config{Profile: "profile.json", Keys: &KeysConfig{OpenAI: "sk-never-logged"}}

	pretty, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(pretty), "sk-never-logged") {
		t.Fatalf("config dump leaks a key: %s", pretty)
	}
}
