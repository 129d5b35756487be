//go:build !fastembed

package embedmodel

import (
	"context"
	"fmt"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// FastEmbedder is a placeholder for a local ONNX-backed embedding runtime.
// This stub is the only FastEmbedder in the repository: it is built when
// the fastembed tag is absent, and every operation reports unavailability.
// No file provides FastEmbedder when the fastembed tag is set.
type FastEmbedder struct{}

// NewFastEmbedder always fails without the fastembed build tag.
func NewFastEmbedder(context.Context, string) (Model, error) {
	return nil, fmt.Errorf("embedmodel: fastembed support not included")
}

func (FastEmbedder) MaxInputToken() int { return 0 }

func (FastEmbedder) InferBatch(context.Context, []string) ([]vecmath.Vec, error) {
	return nil, fmt.Errorf("embedmodel: fastembed support not included")
}

func (FastEmbedder) InferAndFuse(context.Context, []string) (vecmath.Vec, error) {
	return nil, fmt.Errorf("embedmodel: fastembed support not included")
}

func (FastEmbedder) InferWithChunk(context.Context, string) (vecmath.Vec, error) {
	return nil, fmt.Errorf("embedmodel: fastembed support not included")
}
