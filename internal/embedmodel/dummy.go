package embedmodel

import (
	"context"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// DummyDimension is the DummyEmbedder output width, shared so tests that
// mix dummy embeddings with store fixtures agree on one constant.
const DummyDimension = 768

// DummyEmbedder deterministically folds the bytes of a string into a fixed
// dimensionality. It never calls out to a network and is used in tests and
// as the unconditional fallback when no provider is configured.
type DummyEmbedder struct{}

func (DummyEmbedder) MaxInputToken() int { return 8192 }

func (d DummyEmbedder) InferBatch(_ context.Context, texts []string) ([]vecmath.Vec, error) {
	out := make([]vecmath.Vec, len(texts))
	for i, t := range texts {
		out[i] = DummyEmbedding(t)
	}
	return out, nil
}

func (d DummyEmbedder) InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error) {
	return InferAndFuseDefault(ctx, d, texts)
}

func (d DummyEmbedder) InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error) {
	return InferWithChunkDefault(ctx, d, text)
}

// DummyEmbedding folds the bytes of text into a DummyDimension-wide vector
// by adding each byte, scaled to [0,1], at position i mod DummyDimension
// and L2-normalizing the sum, giving a cheap, deterministic,
// content-sensitive stand-in for a real embedding call.
func DummyEmbedding(text string) vecmath.Vec {
	v := make(vecmath.Vec, DummyDimension)
	if len(text) == 0 {
		return v
	}
	for i, b := range []byte(text) {
		idx := i % DummyDimension
		v[idx] += float64(b) / 255.0
	}
	if n := vecmath.Norm(v); n > 0 {
		for i := range v {
			v[i] /= n
		}
	}
	return v
}
