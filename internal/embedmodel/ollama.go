package embedmodel

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// OllamaEmbedder embeds through a local Ollama server via the official
// client.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder builds an OllamaEmbedder for model, reading OLLAMA_HOST
// (default "http://localhost:11434") from the environment.
func NewOllamaEmbedder(model string) (*OllamaEmbedder, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	if model == "" {
		// Commonly available local embedding model; override as needed.
		model = "nomic-embed-text"
	}
	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &OllamaEmbedder{client: ollama.NewClient(u, httpClient), model: model}, nil
}

func (o *OllamaEmbedder) MaxInputToken() int { return 8192 }

func (o *OllamaEmbedder) InferBatch(ctx context.Context, texts []string) ([]vecmath.Vec, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	res, err := o.client.Embed(ctx, &ollama.EmbedRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, ErrNotSupported
	}
	out := make([]vecmath.Vec, len(texts))
	for i, e := range res.Embeddings {
		out[i] = f32ToVec(e)
	}
	return out, nil
}

func (o *OllamaEmbedder) InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error) {
	return InferAndFuseDefault(ctx, o, texts)
}

func (o *OllamaEmbedder) InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error) {
	return InferWithChunkDefault(ctx, o, text)
}

func f32ToVec(v []float32) vecmath.Vec {
	out := make(vecmath.Vec, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
