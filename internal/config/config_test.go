package config_test

import (
	"testing"
	"time"

	"github.com/latticeforge/mnemo/internal/config"
)

func TestDefaultMatchesSpec(t *testing.T) {
	c := config.Default()
	if c.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", c.MaxTokens)
	}
	if c.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", c.Temperature)
	}
	if c.TopP != 1.0 {
		t.Errorf("TopP = %v, want 1.0", c.TopP)
	}
	if c.Streaming {
		t.Error("Streaming = true, want false")
	}
	if c.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", c.Timeout)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestFromEnvOverridesAndIgnoresMalformed(t *testing.T) {
	t.Setenv("MNEMO_LLM_MODEL", "claude-sonnet")
	t.Setenv("MNEMO_LLM_API_KEY", "secret-key")
	t.Setenv("MNEMO_LLM_MAX_TOKENS", "2048")
	t.Setenv("MNEMO_LLM_TEMPERATURE", "not-a-number")
	t.Setenv("MNEMO_LLM_TOP_P", "0.5")
	t.Setenv("MNEMO_LLM_STREAMING", "true")

	c := config.FromEnv()
	if c.Model != "claude-sonnet" {
		t.Errorf("Model = %q, want claude-sonnet", c.Model)
	}
	if c.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want secret-key", c.APIKey)
	}
	if c.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048 (overridden)", c.MaxTokens)
	}
	if c.Temperature != config.DefaultTemperature {
		t.Errorf("Temperature = %v, want default %v (malformed override ignored)", c.Temperature, config.DefaultTemperature)
	}
	if c.TopP != 0.5 {
		t.Errorf("TopP = %v, want 0.5", c.TopP)
	}
	if !c.Streaming {
		t.Error("Streaming = false, want true (overridden)")
	}
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	cases := []config.LLMConfig{
		{Temperature: 2.1, TopP: 0.5},
		{Temperature: -0.1, TopP: 0.5},
		{Temperature: 0.5, TopP: 1.1},
		{Temperature: 0.5, TopP: 0.5, MaxTokens: -1},
		{Temperature: 0.5, TopP: 0.5, Timeout: -time.Second},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: Validate() = nil, want error for %+v", i, c)
		}
	}
}
