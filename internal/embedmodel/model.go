// Package embedmodel defines the opaque embedding-model contract the
// engine's field-construction pipeline depends on, plus the provider roster
// and memoization cache this repository ships.
package embedmodel

import (
	"context"
	"errors"
	"strings"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// ErrNotSupported is returned by a provider that cannot serve a given
// operation (e.g. a text-only provider asked to embed structured input).
var ErrNotSupported = errors.New("embedmodel: operation not supported")

// Model is the narrow capability set the core engine dispatches against:
// infer_batch, infer_and_fuse, infer_with_chunk, plus the session-scoped
// token limit used to chunk long text. Implementations must guarantee
// equal output dimensionality for every call within a session.
type Model interface {
	// InferBatch embeds each text independently, preserving order.
	InferBatch(ctx context.Context, texts []string) ([]vecmath.Vec, error)
	// InferAndFuse embeds texts as a batch, then mean-pools the result.
	InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error)
	// InferWithChunk splits text into chunks bounded by MaxInputToken,
	// embeds each, and mean-pools the result.
	InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error)
	// MaxInputToken is the provider's maximum input size, in tokens.
	MaxInputToken() int
}

// chunkText splits text into roughly maxTokens-sized pieces by a crude
// whitespace-token count, mirroring how infer_with_chunk must bound input
// without depending on a provider-specific tokenizer.
func chunkText(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}
	var chunks []string
	for i := 0; i < len(words); i += maxTokens {
		end := i + maxTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// InferWithChunkDefault implements InferWithChunk in terms of InferBatch
// and mean pooling, for providers that only need to supply InferBatch.
func InferWithChunkDefault(ctx context.Context, m Model, text string) (vecmath.Vec, error) {
	chunks := chunkText(text, m.MaxInputToken())
	vecs, err := m.InferBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return vecmath.MeanPool(vecs)
}

// InferAndFuseDefault implements InferAndFuse in terms of InferBatch and
// mean pooling, for providers that only need to supply InferBatch.
func InferAndFuseDefault(ctx context.Context, m Model, texts []string) (vecmath.Vec, error) {
	vecs, err := m.InferBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return vecmath.MeanPool(vecs)
}
