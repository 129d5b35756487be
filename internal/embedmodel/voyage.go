package embedmodel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	json "github.com/alpkeskin/gotoon"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

// VoyageEmbedder proxies to Voyage AI embeddings, Anthropic's recommended
// embeddings partner. Requires VOYAGE_API_KEY.
type VoyageEmbedder struct {
	client        *http.Client
	apiKey        string
	model         string
	inputType     string
	endpoint      string
	maxInputToken int
}

// NewVoyageEmbedder builds a VoyageEmbedder for model (defaults to
// "voyage-3.5"), reading VOYAGE_API_KEY, ADK_EMBED_INPUT_TYPE ("document"
// default), and VOYAGE_API_BASE from the environment.
func NewVoyageEmbedder(model string) *VoyageEmbedder {
	if model == "" {
		model = "voyage-3.5"
	}
	inputType := os.Getenv("ADK_EMBED_INPUT_TYPE")
	if inputType == "" {
		inputType = "document"
	}
	endpoint := os.Getenv("VOYAGE_API_BASE")
	if endpoint == "" {
		endpoint = "https://api.voyageai.com/v1/embeddings"
	}
	return &VoyageEmbedder{
		client:        &http.Client{Timeout: 60 * time.Second},
		apiKey:        os.Getenv("VOYAGE_API_KEY"),
		model:         model,
		inputType:     inputType,
		endpoint:      endpoint,
		maxInputToken: 32000,
	}
}

func (v *VoyageEmbedder) MaxInputToken() int { return v.maxInputToken }

func (v *VoyageEmbedder) InferBatch(ctx context.Context, texts []string) ([]vecmath.Vec, error) {
	if v.apiKey == "" {
		return nil, errors.New("embedmodel: VOYAGE_API_KEY not set; Anthropic does not offer first-party embeddings")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"input":      texts,
		"model":      v.model,
		"input_type": v.inputType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedmodel: voyage embeddings HTTP %d: %s", resp.StatusCode, string(slurp))
	}

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, ErrNotSupported
	}

	result := make([]vecmath.Vec, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(result) {
			continue
		}
		result[d.Index] = f64ToVec(d.Embedding)
	}
	return result, nil
}

func (v *VoyageEmbedder) InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error) {
	return InferAndFuseDefault(ctx, v, texts)
}

func (v *VoyageEmbedder) InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error) {
	return InferWithChunkDefault(ctx, v, text)
}

func f64ToVec(v []float64) vecmath.Vec {
	out := make(vecmath.Vec, len(v))
	copy(out, v)
	return out
}
