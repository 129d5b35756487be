// Package config carries the engine's external environment/config struct:
// LLM-call parameters with their documented defaults, loaded from the
// process environment in the same MNEMO_-prefixed idiom
// internal/embedmodel.AutoModel uses for provider selection.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default LLM-call parameter values.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
	DefaultStreaming   = false
	DefaultTimeout     = 60 * time.Second
)

// LLMConfig parameterizes calls into an external LLM driver: model
// selection, the secret API key, and the sampling/timeout knobs.
type LLMConfig struct {
	Model       string
	APIKey      string // secret; never logged
	MaxTokens   int
	Temperature float64
	TopP        float64
	Streaming   bool
	Timeout     time.Duration
}

// Default returns an LLMConfig with the stock defaults and no model/key
// set.
func Default() LLMConfig {
	return LLMConfig{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		Streaming:   DefaultStreaming,
		Timeout:     DefaultTimeout,
	}
}

// FromEnv loads an LLMConfig from the process environment, starting from
// Default() and overriding any field whose MNEMO_LLM_* variable is set.
// Malformed numeric/duration/bool overrides are ignored, falling back to
// the default (never panicking on a bad env var), mirroring the
// "never hard-fail, always degrade" idiom used by this engine's embedding
// provider selection.
func FromEnv() LLMConfig {
	c := Default()
	c.Model = strings.TrimSpace(os.Getenv("MNEMO_LLM_MODEL"))
	c.APIKey = os.Getenv("MNEMO_LLM_API_KEY")

	if v, ok := lookupInt("MNEMO_LLM_MAX_TOKENS"); ok {
		c.MaxTokens = v
	}
	if v, ok := lookupFloat("MNEMO_LLM_TEMPERATURE"); ok {
		c.Temperature = v
	}
	if v, ok := lookupFloat("MNEMO_LLM_TOP_P"); ok {
		c.TopP = v
	}
	if v, ok := lookupBool("MNEMO_LLM_STREAMING"); ok {
		c.Streaming = v
	}
	if v, ok := lookupDuration("MNEMO_LLM_TIMEOUT"); ok {
		c.Timeout = v
	}
	return c
}

// Validate enforces the parameter bounds: temperature in [0,2], top_p in
// [0,1], non-negative max_tokens and timeout.
func (c LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature %v out of [0,2]", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("config: top_p %v out of [0,1]", c.TopP)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens %d must be non-negative", c.MaxTokens)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout %v must be non-negative", c.Timeout)
	}
	return nil
}

func lookupInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func lookupFloat(key string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func lookupBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func lookupDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
