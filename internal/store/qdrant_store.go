package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// qdrantEnvelope matches Qdrant's {"status":..., "result": ...} response
// shape for whatever payload T the call expects.
type qdrantEnvelope[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
	Score   float64        `json:"score,omitempty"`
}

type qdrantScrollResult struct {
	Points         []qdrantPoint   `json:"points"`
	NextPageOffset json.RawMessage `json:"next_page_offset"`
}

type qdrantCountResult struct {
	Count int `json:"count"`
}

// qdrantSchemaFile is the JSON document CreateSchema expects at schemaPath.
type qdrantSchemaFile struct {
	VectorSize int    `json:"vector_size"`
	Distance   string `json:"distance"`
}

// QdrantStore persists memories as Qdrant points, encoding the full
// MemoryNote and field embedding as JSON payload alongside the
// representative ANN vector.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

var _ VectorStore = (*QdrantStore)(nil)
var _ SchemaInitializer = (*QdrantStore)(nil)

// NewQdrantStore creates a Qdrant-backed VectorStore. baseURL defaults to
// http://localhost:6333; apiKey, if empty, falls back to QDRANT_API_KEY.
func NewQdrantStore(baseURL, collection, apiKey string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	if apiKey == "" {
		apiKey = os.Getenv("QDRANT_API_KEY")
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, qs.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		return memtype.NewUpstreamError("qdrant", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return memtype.NewUpstreamError("qdrant", err)
	}
	if resp.StatusCode >= 300 {
		return memtype.NewUpstreamError("qdrant", fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// CreateSchema implements SchemaInitializer by creating the collection
// described by the JSON document at schemaPath.
func (qs *QdrantStore) CreateSchema(ctx context.Context, schemaPath string) error {
	if schemaPath == "" {
		return errors.New("store: schemaPath is empty")
	}
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("store: open schema file: %w", err)
	}
	var schema qdrantSchemaFile
	if err := json.Unmarshal(data, &schema); err != nil {
		return fmt.Errorf("store: parse schema file: %w", err)
	}
	req := map[string]any{
		"vectors": map[string]any{"size": schema.VectorSize, "distance": schema.Distance},
	}
	return qs.do(ctx, http.MethodPut, "/collections/"+qs.collection, req, nil)
}

func payloadFromRecord(rec MemoryRecord) (map[string]any, error) {
	noteJSON, err := json.Marshal(rec.Note)
	if err != nil {
		return nil, err
	}
	embJSON, err := json.Marshal(rec.FullEmbedding)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"note":      string(noteJSON),
		"embedding": string(embJSON),
	}, nil
}

func recordFromPoint(p qdrantPoint) (MemoryRecord, error) {
	var rec MemoryRecord
	noteStr, _ := p.Payload["note"].(string)
	if err := json.Unmarshal([]byte(noteStr), &rec.Note); err != nil {
		return rec, err
	}
	embStr, _ := p.Payload["embedding"].(string)
	if embStr != "" {
		if err := json.Unmarshal([]byte(embStr), &rec.FullEmbedding); err != nil {
			return rec, err
		}
	}
	rec.Vector = vecmath.Vec(float32ToFloat64(p.Vector))
	return rec, nil
}

func float32ToFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func float64ToFloat32(v vecmath.Vec) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func qdrantPointID(id memtype.MemoryId) string {
	return uuid.UUID(id).String()
}

func (qs *QdrantStore) StoreMemory(ctx context.Context, rec MemoryRecord) error {
	payload, err := payloadFromRecord(rec)
	if err != nil {
		return err
	}
	body := map[string]any{
		"points": []qdrantPoint{{
			ID:      qdrantPointID(rec.Note.ID),
			Vector:  float64ToFloat32(rec.Vector),
			Payload: payload,
		}},
	}
	return qs.do(ctx, http.MethodPut, "/collections/"+qs.collection+"/points", body, nil)
}

func (qs *QdrantStore) SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error) {
	body := map[string]any{
		"vector":       float64ToFloat32(queryVector),
		"limit":        limit,
		"with_payload": true,
		"with_vector":  true,
	}
	var env qdrantEnvelope[[]qdrantPoint]
	if err := qs.do(ctx, http.MethodPost, "/collections/"+qs.collection+"/points/search", body, &env); err != nil {
		return nil, err
	}
	out := make([]MemoryRecord, 0, len(env.Result))
	for _, p := range env.Result {
		rec, err := recordFromPoint(p)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (qs *QdrantStore) GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error) {
	pointIDs := make([]string, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrantPointID(id)
	}
	body := map[string]any{"ids": pointIDs, "with_payload": true, "with_vector": true}
	var env qdrantEnvelope[[]qdrantPoint]
	if err := qs.do(ctx, http.MethodPost, "/collections/"+qs.collection+"/points", body, &env); err != nil {
		return nil, err
	}
	out := make([]MemoryRecord, 0, len(env.Result))
	for _, p := range env.Result {
		rec, err := recordFromPoint(p)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (qs *QdrantStore) UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error {
	existing, err := qs.GetByIDs(ctx, []memtype.MemoryId{id})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return memtype.ErrNodeNotContained
	}
	rec := existing[0]
	rec.FullEmbedding = embedding
	rec.Vector = vector
	return qs.StoreMemory(ctx, rec)
}

func (qs *QdrantStore) DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error {
	pointIDs := make([]string, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrantPointID(id)
	}
	body := map[string]any{"points": pointIDs}
	return qs.do(ctx, http.MethodPost, "/collections/"+qs.collection+"/points/delete", body, nil)
}

func (qs *QdrantStore) Iterate(ctx context.Context, fn func(MemoryRecord) bool) error {
	var offset any
	for {
		body := map[string]any{"limit": 256, "with_payload": true, "with_vector": true}
		if offset != nil {
			body["offset"] = offset
		}
		var env qdrantEnvelope[qdrantScrollResult]
		if err := qs.do(ctx, http.MethodPost, "/collections/"+qs.collection+"/points/scroll", body, &env); err != nil {
			return err
		}
		if len(env.Result.Points) == 0 {
			return nil
		}
		for _, p := range env.Result.Points {
			rec, err := recordFromPoint(p)
			if err != nil {
				continue
			}
			if !fn(rec) {
				return nil
			}
		}
		if len(env.Result.NextPageOffset) == 0 || string(env.Result.NextPageOffset) == "null" {
			return nil
		}
		var next any
		if err := json.Unmarshal(env.Result.NextPageOffset, &next); err != nil {
			return nil
		}
		offset = next
	}
}

func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	var env qdrantEnvelope[qdrantCountResult]
	if err := qs.do(ctx, http.MethodPost, "/collections/"+qs.collection+"/points/count", map[string]any{"exact": true}, &env); err != nil {
		return 0, err
	}
	return env.Result.Count, nil
}
