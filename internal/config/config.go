package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration errors are fatal and pre-flight: they abort before any
// network call is made.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrMissingBaseURL  = errors.New("missing base URL")
)

// ProviderConfig describes one backend. It is resolved once per run and
// immutable afterwards. The API key is never serialized or echoed into
// reports.
type ProviderConfig struct {
	Provider    string        `json:"provider" yaml:"provider"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model" yaml:"model"`
	APIKey      string        `json:"-" yaml:"-"`
	Temperature float64       `json:"temperature" yaml:"temperature"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Overrides carries explicit call arguments. Set fields take precedence over
// the config file, which takes precedence over environment variables, which
// take precedence over built-in defaults.
type Overrides struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

var defaults = map[string]ProviderConfig{
	"openai": {
		Provider:    "openai",
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o",
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     60 * time.Second,
	},
	"anthropic": {
		Provider:    "anthropic",
		BaseURL:     "https://api.anthropic.com",
		Model:       "claude-3-5-sonnet-20241022",
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     60 * time.Second,
	},
	"compatible": {
		Provider:    "compatible",
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     120 * time.Second,
	},
	"ollama": {
		Provider:    "ollama",
		BaseURL:     "http://localhost:11434",
		Model:       "llama3.1",
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     300 * time.Second,
	},
	"custom": {
		Provider:    "custom",
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     120 * time.Second,
	},
}

// requiresKey lists the hosted backends that cannot be called anonymously.
func requiresKey(provider string) bool {
	return provider == "openai" || provider == "anthropic"
}

// Resolve builds the effective ProviderConfig for a run. configFile may be
// empty, in which case a promptgauge.yaml in the working directory is used
// when present.
func Resolve(configFile string, o Overrides) (ProviderConfig, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return ProviderConfig{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("promptgauge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return ProviderConfig{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	name := firstNonEmpty(o.Provider, v.GetString("provider"), os.Getenv("PROMPTGAUGE_PROVIDER"), "openai")
	cfg, ok := defaults[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownProvider, name, strings.Join(providerNames(), ", "))
	}

	// Environment layer.
	prefix := strings.ToUpper(name)
	if base := os.Getenv(prefix + "_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	if model := os.Getenv(prefix + "_MODEL"); model != "" {
		cfg.Model = model
	}
	if key := os.Getenv(prefix + "_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	// Config file layer.
	section := "providers." + name + "."
	if base := v.GetString(section + "base_url"); base != "" {
		cfg.BaseURL = base
	}
	if model := v.GetString(section + "model"); model != "" {
		cfg.Model = model
	}
	if v.IsSet(section + "temperature") {
		cfg.Temperature = v.GetFloat64(section + "temperature")
	}
	if v.IsSet(section + "max_tokens") {
		cfg.MaxTokens = v.GetInt(section + "max_tokens")
	}
	if v.IsSet(section + "timeout") {
		cfg.Timeout = v.GetDuration(section + "timeout")
	}

	// Explicit arguments win over everything.
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
	if o.MaxTokens > 0 {
		cfg.MaxTokens = o.MaxTokens
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}

	if err := validate(cfg); err != nil {
		return ProviderConfig{}, err
	}
	return cfg, nil
}

func validate(cfg ProviderConfig) error {
	if requiresKey(cfg.Provider) && cfg.APIKey == "" {
		return fmt.Errorf("%w for provider %q (set %s_API_KEY or pass --api-key)",
			ErrMissingAPIKey, cfg.Provider, strings.ToUpper(cfg.Provider))
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("%w for provider %q (pass --base-url or set %s_BASE_URL)",
			ErrMissingBaseURL, cfg.Provider, strings.ToUpper(cfg.Provider))
	}
	return nil
}

func providerNames() []string {
	names := make([]string, 0, len(defaults))
	for _, n := range []string{"openai", "compatible", "anthropic", "ollama", "custom"} {
		if _, ok := defaults[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
