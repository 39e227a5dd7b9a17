// Package config turns viper settings into a validated runtime configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/logger"
)

// Completion service providers.
const (
	ProviderMistral   = "mistral"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Completion configures the remote completion service.
type Completion struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	StateDir       string
	Completion     Completion
	Language       string
	TemplatesFile  string
	OutputFilename string
	SessionTTL     time.Duration
	Port           int
	Log            logger.Config
}

type providerDefaults struct {
	baseURL string
	model   string
	keyEnv  string
}

var providers = map[string]providerDefaults{
	ProviderMistral:   {baseURL: "https://codestral.mistral.ai/v1", model: "codestral-latest", keyEnv: "MISTRAL_API_KEY"},
	ProviderOpenAI:    {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini", keyEnv: "OPENAI_API_KEY"},
	ProviderAnthropic: {model: "claude-haiku-4-5-20251001", keyEnv: "ANTHROPIC_API_KEY"},
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper, stateDir string) {
	v.SetDefault("state_dir", stateDir)
	v.SetDefault("completion.provider", ProviderMistral)
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.model", "")
	v.SetDefault("completion.max_tokens", 600)
	v.SetDefault("completion.temperature", 0.3)
	v.SetDefault("completion.timeout", "60s")
	v.SetDefault("rewrite.language", "C")
	v.SetDefault("templates.file", "")
	v.SetDefault("output.filename", "improved_code.c")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from v and fills provider-specific defaults.
// It does not validate; call Validate before talking to the completion service.
func Load(v *viper.Viper) *Config {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("completion.provider")))
	defaults := providers[provider]

	baseURL := v.GetString("completion.base_url")
	if baseURL == "" {
		baseURL = defaults.baseURL
	}
	model := v.GetString("completion.model")
	if model == "" {
		model = defaults.model
	}
	apiKey := v.GetString("completion.api_key")
	if apiKey == "" && defaults.keyEnv != "" {
		apiKey = os.Getenv(defaults.keyEnv)
	}

	return &Config{
		StateDir: v.GetString("state_dir"),
		Completion: Completion{
			Provider:    provider,
			BaseURL:     baseURL,
			APIKey:      apiKey,
			Model:       model,
			MaxTokens:   v.GetInt("completion.max_tokens"),
			Temperature: v.GetFloat64("completion.temperature"),
			Timeout:     v.GetDuration("completion.timeout"),
		},
		Language:       v.GetString("rewrite.language"),
		TemplatesFile:  v.GetString("templates.file"),
		OutputFilename: v.GetString("output.filename"),
		SessionTTL:     v.GetDuration("session.ttl"),
		Port:           v.GetInt("port"),
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// Validate reports the first configuration problem that would prevent a
// rewrite from being sent.
func (c *Config) Validate() error {
	if _, ok := providers[c.Completion.Provider]; !ok {
		return &apperr.ConfigError{Key: "completion.provider", Msg: fmt.Sprintf("unknown provider %q (want mistral, openai or anthropic)", c.Completion.Provider)}
	}
	if c.Completion.APIKey == "" {
		return &apperr.ConfigError{
			Key: "completion.api_key",
			Msg: fmt.Sprintf("not set; set RECODE_COMPLETION_API_KEY or %s", providers[c.Completion.Provider].keyEnv),
		}
	}
	if c.Completion.Model == "" {
		return &apperr.ConfigError{Key: "completion.model", Msg: "not set"}
	}
	if c.Completion.MaxTokens <= 0 {
		return &apperr.ConfigError{Key: "completion.max_tokens", Msg: "must be positive"}
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return &apperr.ConfigError{Key: "completion.temperature", Msg: "must be between 0 and 2"}
	}
	if c.Completion.Timeout <= 0 {
		return &apperr.ConfigError{Key: "completion.timeout", Msg: "must be positive"}
	}
	if strings.TrimSpace(c.OutputFilename) == "" {
		return &apperr.ConfigError{Key: "output.filename", Msg: "not set"}
	}
	return nil
}

// MaskedKey returns the API key with all but its last four characters hidden.
func MaskedKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
