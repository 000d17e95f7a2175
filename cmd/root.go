package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orestes-garcia-martinez/careerclaw/internal/enhance"
	"github.com/orestes-garcia-martinez/careerclaw/internal/filtering"
)

const app = "careerclaw"

type Config struct {
	Profile     string            `mapstructure:"profile"`
	Resume      string            `mapstructure:"resume"`
	Dir         string            `mapstructure:"dir"`
	UserID      string            `mapstructure:"user-id"`
	TopK        int               `mapstructure:"top-k"`
	Timeout     string            `mapstructure:"timeout"`
	MetricsFile string            `mapstructure:"metrics-file"`
	Filters     *filtering.Config `mapstructure:"filters"`
	Sources     *SourcesConfig    `mapstructure:"sources"`
	LLM         *enhance.Settings `mapstructure:"llm"`
	Keys        *KeysConfig       `mapstructure:"keys" json:"-"`
}

type SourcesConfig struct {
	UserAgent string          `mapstructure:"user-agent"`
	RemoteOK  *RemoteOKConfig `mapstructure:"remoteok"`
	Files     []string        `mapstructure:"files"`
}

type RemoteOKConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	URL      string `mapstructure:"url"`
	Limit    int    `mapstructure:"limit"`
}

// KeysConfig holds provider credentials, inline or as files. LLM is the
// legacy single key used for llm.provider.
type KeysConfig struct {
	OpenAI        string `mapstructure:"openai"`
	OpenAIFile    string `mapstructure:"openai-file"`
	Anthropic     string `mapstructure:"anthropic"`
	AnthropicFile string `mapstructure:"anthropic-file"`
	Gemini        string `mapstructure:"gemini"`
	GeminiFile    string `mapstructure:"gemini-file"`
	LLM           string `mapstructure:"llm"`
	LLMFile       string `mapstructure:"llm-file"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"dir":                       "CAREERCLAW_DIR",
	"user-id":                   "CAREERCLAW_USER_ID",
	"llm.chain":                 "CAREERCLAW_LLM_CHAIN",
	"llm.provider":              "CAREERCLAW_LLM_PROVIDER",
	"llm.model":                 "CAREERCLAW_LLM_MODEL",
	"llm.max-retries":           "CAREERCLAW_LLM_MAX_RETRIES",
	"llm.circuit-breaker-fails": "CAREERCLAW_LLM_CIRCUIT_BREAKER_FAILS",
	"llm.timeout":               "CAREERCLAW_LLM_TIMEOUT",
	"llm.cooldown":              "CAREERCLAW_LLM_COOLDOWN",
	"keys.llm":                  "CAREERCLAW_LLM_KEY",
	"keys.llm-file":             "CAREERCLAW_LLM_KEY_FILE",
	"keys.openai":               "CAREERCLAW_OPENAI_KEY",
	"keys.openai-file":          "CAREERCLAW_OPENAI_KEY_FILE",
	"keys.anthropic":            "CAREERCLAW_ANTHROPIC_KEY",
	"keys.anthropic-file":       "CAREERCLAW_ANTHROPIC_KEY_FILE",
	"keys.gemini":               "CAREERCLAW_GEMINI_KEY",
	"keys.gemini-file":          "CAREERCLAW_GEMINI_KEY_FILE",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careerclaw ranks remote job postings against your profile and drafts outreach for the best matches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careerclaw.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().Bool("json-log", false, "json format for logging")
	rootCmd.PersistentFlags().String("dir", "", "directory for tracking files (default is .careerclaw)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json-log", rootCmd.PersistentFlags().Lookup("json-log"))
	viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Everything can come from flags and the environment, so only an explicit
	// or unparsable config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.LLM == nil {
		config.LLM = &enhance.Settings{}
	}
	if config.Keys == nil {
		config.Keys = &KeysConfig{}
	}
	if config.Sources == nil {
		config.Sources = &SourcesConfig{}
	}

	return config, nil
}
