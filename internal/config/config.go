// Package config loads the CLI configuration: a YAML file, then environment
// variables, then whatever the caller overrides from flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/fastprompt/providers/ai"
	"github.com/leofalp/fastprompt/providers/ai/gemini"
	"github.com/leofalp/fastprompt/providers/ai/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultProvider = ProviderOpenAI
	DefaultTimeout  = 60 * time.Second
)

// Config is the file layout. Each provider keeps its own section so switching
// provider does not lose the other one's model or key.
type Config struct {
	Provider  string    `yaml:"provider"`
	LogLevel  string    `yaml:"log_level"`
	LogFormat string    `yaml:"log_format"`
	OpenAI    ai.Config `yaml:"openai"`
	Gemini    ai.Config `yaml:"gemini"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Provider: DefaultProvider,
		OpenAI:   ai.Config{Timeout: DefaultTimeout},
		Gemini:   ai.Config{Timeout: DefaultTimeout},
	}
}

// Load reads path (when non-empty) over the defaults and applies the process
// environment. A missing file is an error: an explicit path must exist.
//
// A non-empty provider overrides both the file and FASTPROMPT_PROVIDER. It is
// applied before the model and timeout variables so they land in its section.
func Load(path, provider string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv, provider); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. Set variables win over file values.
//
//   - OPENAI_API_KEY, OPENAI_API_BASE_URL
//   - GEMINI_API_KEY, GEMINI_API_BASE_URL
//   - FASTPROMPT_PROVIDER
//   - FASTPROMPT_MODEL and FASTPROMPT_TIMEOUT, applied to the selected provider
//
// A non-empty provider wins over FASTPROMPT_PROVIDER and selects the section
// that FASTPROMPT_MODEL and FASTPROMPT_TIMEOUT are written to.
func (c *Config) ApplyEnv(lookup func(string) (string, bool), provider string) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set("OPENAI_API_KEY", &c.OpenAI.APIKey)
	set("OPENAI_API_BASE_URL", &c.OpenAI.BaseURL)
	set("GEMINI_API_KEY", &c.Gemini.APIKey)
	set("GEMINI_API_BASE_URL", &c.Gemini.BaseURL)
	set("FASTPROMPT_PROVIDER", &c.Provider)
	if provider != "" {
		c.Provider = provider
	}

	selected, err := c.selected()
	if err != nil {
		return err
	}
	set("FASTPROMPT_MODEL", &selected.Model)

	if v, ok := lookup("FASTPROMPT_TIMEOUT"); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FASTPROMPT_TIMEOUT %q: %w", v, err)
		}
		selected.Timeout = timeout
	}
	return nil
}

// Selected returns a copy of the adapter settings of the configured provider.
func (c *Config) Selected() (ai.Config, error) {
	selected, err := c.selected()
	if err != nil {
		return ai.Config{}, err
	}
	return *selected, nil
}

// SetModel overrides the model of the configured provider.
func (c *Config) SetModel(model string) error {
	selected, err := c.selected()
	if err != nil {
		return err
	}
	selected.Model = model
	return nil
}

// SetTimeout overrides the timeout of the configured provider.
func (c *Config) SetTimeout(timeout time.Duration) error {
	selected, err := c.selected()
	if err != nil {
		return err
	}
	selected.Timeout = timeout
	return nil
}

func (c *Config) selected() (*ai.Config, error) {
	switch strings.ToLower(c.Provider) {
	case ProviderOpenAI, "":
		c.Provider = ProviderOpenAI
		return &c.OpenAI, nil
	case ProviderGemini:
		c.Provider = ProviderGemini
		return &c.Gemini, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected %q or %q)", c.Provider, ProviderOpenAI, ProviderGemini)
	}
}

// NewAdapter builds the adapter of the configured provider. Credentials are
// not checked here; a missing key surfaces from the first call.
func (c *Config) NewAdapter() (ai.ChatAdapter, error) {
	selected, err := c.Selected()
	if err != nil {
		return nil, err
	}
	return NewAdapter(c.Provider, selected)
}

// NewAdapter builds the adapter for provider from explicit settings.
func NewAdapter(provider string, cfg ai.Config) (ai.ChatAdapter, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return openai.New(cfg), nil
	case ProviderGemini:
		return gemini.New(cfg), nil
	case "":
		return nil, errors.New("provider must be set")
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
