package embedmodel

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// OpenAIEmbedder calls the OpenAI embeddings API through go-openai.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder builds an OpenAIEmbedder for model (default
// "text-embedding-3-small"), reading OPENAI_API_KEY (or OPENAI_KEY) from
// the environment. Fails when no key is set.
func NewOpenAIEmbedder(model string) (*OpenAIEmbedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = os.Getenv("OPENAI_KEY")
	}
	if key == "" {
		return nil, errors.New("embedmodel: OPENAI_API_KEY not set")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	cfg := openai.DefaultConfig(key)
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *OpenAIEmbedder) MaxInputToken() int { return 8191 }

func (o *OpenAIEmbedder) InferBatch(ctx context.Context, texts []string) ([]vecmath.Vec, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.model),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, ErrNotSupported
	}
	out := make([]vecmath.Vec, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = f32ToVec(d.Embedding)
	}
	return out, nil
}

func (o *OpenAIEmbedder) InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error) {
	return InferAndFuseDefault(ctx, o, texts)
}

func (o *OpenAIEmbedder) InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error) {
	return InferWithChunkDefault(ctx, o, text)
}
