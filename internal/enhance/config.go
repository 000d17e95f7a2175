package enhance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ai/providers"
)

const (
	DefaultMaxRetries       = 1
	DefaultBreakerThreshold = 3
	DefaultCooldown         = 60 * time.Second
	DefaultTimeout          = 10 * time.Second
	DefaultRetryInterval    = 500 * time.Millisecond
	DefaultMinWords         = 50
	DefaultMaxWords         = 350

	// legacyProvider is assumed when only a model or a single key is configured.
	legacyProvider = ai.ProviderAnthropic
)

// Candidate is one provider/model pair of the failover chain.
type Candidate struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (c Candidate) String() string {
	return c.Provider + "/" + c.Model
}

// Config controls the enhancer. MaxRetries counts attempts after the first.
// Other zero numeric fields select their default through Normalize.
type Config struct {
	Chain            []Candidate
	MaxRetries       int
	BreakerThreshold int
	Cooldown         time.Duration
	Timeout          time.Duration
	// RetryInterval is the first delay between retries of one candidate. A
	// negative value disables waiting.
	RetryInterval time.Duration
	MinWords      int
	MaxWords      int
	MaxTokens     int
}

// DefaultConfig returns a Config with every default and an empty chain.
func DefaultConfig() Config {
	return Config{MaxRetries: DefaultMaxRetries}.Normalize()
}

// Normalize fills unset fields with defaults.
func (c Config) Normalize() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = DefaultBreakerThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.MinWords <= 0 {
		c.MinWords = DefaultMinWords
	}
	if c.MaxWords <= 0 || c.MaxWords < c.MinWords {
		c.MaxWords = max(DefaultMaxWords, c.MinWords)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = ai.DefaultMaxTokens
	}
	return c
}

// Settings is the user-facing configuration as decoded by viper.
type Settings struct {
	Chain               string `mapstructure:"chain"`
	Provider            string `mapstructure:"provider"`
	Model               string `mapstructure:"model"`
	MaxRetries          *int   `mapstructure:"max-retries"`
	CircuitBreakerFails *int   `mapstructure:"circuit-breaker-fails"`
	Timeout             string `mapstructure:"timeout"`
	Cooldown            string `mapstructure:"cooldown"`
}

// Config converts the settings. Without an explicit chain, a single candidate
// is built from Provider and Model.
func (s Settings) Config() (Config, error) {
	cfg := Config{MaxRetries: DefaultMaxRetries}

	chain, err := ParseChain(s.Chain)
	if err != nil {
		return Config{}, err
	}
	if len(chain) == 0 && (strings.TrimSpace(s.Provider) != "" || strings.TrimSpace(s.Model) != "") {
		provider := strings.ToLower(strings.TrimSpace(s.Provider))
		if provider == "" {
			provider = legacyProvider
		}
		if !ai.KnownProvider(provider) {
			return Config{}, fmt.Errorf("unsupported llm provider %q", s.Provider)
		}
		chain = []Candidate{{Provider: provider, Model: modelOrDefault(provider, s.Model)}}
	}
	cfg.Chain = chain

	if s.MaxRetries != nil {
		if *s.MaxRetries < 0 {
			return Config{}, fmt.Errorf("max retries must not be negative, got %d", *s.MaxRetries)
		}
		cfg.MaxRetries = *s.MaxRetries
	}
	if s.CircuitBreakerFails != nil {
		if *s.CircuitBreakerFails <= 0 {
			return Config{}, fmt.Errorf("circuit breaker fails must be positive, got %d", *s.CircuitBreakerFails)
		}
		cfg.BreakerThreshold = *s.CircuitBreakerFails
	}
	if cfg.Timeout, err = ParseSeconds(s.Timeout); err != nil {
		return Config{}, fmt.Errorf("parsing timeout: %w", err)
	}
	if cfg.Cooldown, err = ParseSeconds(s.Cooldown); err != nil {
		return Config{}, fmt.Errorf("parsing cooldown: %w", err)
	}

	return cfg.Normalize(), nil
}

// ParseChain parses "provider/model" entries separated by commas. A bare
// model is an openai model; a bare known provider uses its default model.
func ParseChain(raw string) ([]Candidate, error) {
	var chain []Candidate
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		provider, model, found := strings.Cut(item, "/")
		provider = strings.ToLower(strings.TrimSpace(provider))
		model = strings.TrimSpace(model)

		if !found {
			if ai.KnownProvider(provider) {
				model = ""
			} else {
				provider, model = ai.ProviderOpenAI, item
			}
		}
		if !ai.KnownProvider(provider) {
			return nil, fmt.Errorf("unsupported llm provider %q in chain entry %q", provider, item)
		}
		chain = append(chain, Candidate{Provider: provider, Model: modelOrDefault(provider, model)})
	}
	return chain, nil
}

// ParseSeconds accepts a Go duration or a plain number of seconds. Empty
// input yields zero.
func ParseSeconds(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}

func modelOrDefault(provider, model string) string {
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return providers.DefaultModel(provider)
}
