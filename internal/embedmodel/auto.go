package embedmodel

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// AutoModel chooses an embedding provider from the environment:
//
//	MNEMO_EMBED_PROVIDER = openai | ollama | voyage | anthropic | fastembed
//	MNEMO_EMBED_MODEL     = <model string>
//
// Falling back to DummyEmbedder and logging the fallback (via zerolog) when
// no provider is configured, or the chosen provider cannot be constructed.
func AutoModel(logger zerolog.Logger) Model {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("MNEMO_EMBED_PROVIDER")))
	model := strings.TrimSpace(os.Getenv("MNEMO_EMBED_MODEL"))

	switch provider {
	case "openai":
		if e, err := NewOpenAIEmbedder(model); err == nil {
			return e
		}
	case "ollama":
		if e, err := NewOllamaEmbedder(model); err == nil {
			return e
		}
	case "voyage", "claude", "anthropic":
		if e := NewVoyageEmbedder(model); e.apiKey != "" {
			return e
		}
	case "fastembed":
		if e, err := NewFastEmbedder(context.Background(), model); err == nil {
			return e
		}
	}

	logger.Warn().Str("provider", provider).Msg("embedmodel: falling back to DummyEmbedder")
	return DummyEmbedder{}
}
