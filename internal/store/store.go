// Package store defines the persistence contracts the memory engine's
// recall path and cluster-hydration path depend on, plus concrete
// adapters: an in-process map for tests and small deployments, and
// network-backed adapters for Qdrant, Neo4j, MongoDB, and Postgres.
package store

import (
	"context"
	"time"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// MemoryRecord is a persisted memory: its note, a single representative
// vector for ANN search (e.g. a semantic memory's content vector, a
// situational memory's narrative vector), and the full multi-field
// embedding used for precise rescoring after retrieval.
type MemoryRecord struct {
	Note           memtype.MemoryNote
	Vector         vecmath.Vec
	FullEmbedding  fieldembed.MemoryEmbedding
	LastEmbeddedAt time.Time
}

// VectorStore is the contract every long-term memory backend satisfies.
type VectorStore interface {
	StoreMemory(ctx context.Context, rec MemoryRecord) error
	SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error)
	GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error)
	UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error
	DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error
	Iterate(ctx context.Context, fn func(MemoryRecord) bool) error
	Count(ctx context.Context) (int, error)
}

// SchemaInitializer is implemented by stores exposing a bootstrap routine
// for their backing schema/collection.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context, schemaPath string) error
}

// GraphStore is implemented by backends that additionally persist the
// memory link graph (rather than relying purely on the in-process
// MemoryCluster).
type GraphStore interface {
	UpsertGraph(ctx context.Context, note memtype.MemoryNote, links []memtype.MemoryLink) error
	Neighborhood(ctx context.Context, seedIDs []memtype.MemoryId, hops, limit int) ([]MemoryRecord, error)
}
