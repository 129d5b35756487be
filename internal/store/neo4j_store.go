package store

import (
	"context"
	"errors"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// Neo4jAccessMode controls whether a session is opened for read or write
// access.
type Neo4jAccessMode string

const (
	AccessModeWrite Neo4jAccessMode = "write"
	AccessModeRead  Neo4jAccessMode = "read"
)

// Neo4jSessionConfig mirrors the minimal session configuration this store
// needs from the driver.
type Neo4jSessionConfig struct {
	AccessMode   Neo4jAccessMode
	DatabaseName string
}

// neo4jDriver abstracts the driver capabilities this store depends on, so
// tests can supply a fake without linking the real driver package (which
// is only compiled in behind the neo4j build tag).
type neo4jDriver interface {
	NewSession(ctx context.Context, config Neo4jSessionConfig) (neo4jSession, error)
	Close(ctx context.Context) error
}

type neo4jSession interface {
	Run(ctx context.Context, query string, params map[string]any) (neo4jResult, error)
	Close(ctx context.Context) error
}

type neo4jResult interface {
	Next(ctx context.Context) bool
	Record() neo4jRecord
	Err() error
	Close(ctx context.Context) error
}

type neo4jRecord interface {
	Get(key string) (any, bool)
}

// Neo4jStore composes an existing VectorStore with a Neo4j-backed link
// graph: vector operations delegate to base, while link persistence and
// neighborhood traversal run as Cypher queries.
type Neo4jStore struct {
	base     VectorStore
	driver   neo4jDriver
	database string
}

var (
	_ VectorStore = (*Neo4jStore)(nil)
	_ GraphStore  = (*Neo4jStore)(nil)
)

// ErrNeo4jUnavailable is returned when graph operations run without a
// configured driver.
var ErrNeo4jUnavailable = errors.New("store: neo4j driver not configured")

// NewNeo4jStore constructs a store delegating vector operations to base
// and persisting the link graph via driver.
func NewNeo4jStore(base VectorStore, driver neo4jDriver, database string) (*Neo4jStore, error) {
	if base == nil {
		return nil, errors.New("store: base vector store is nil")
	}
	if driver == nil {
		return nil, ErrNeo4jUnavailable
	}
	return &Neo4jStore{base: base, driver: driver, database: database}, nil
}

func (s *Neo4jStore) StoreMemory(ctx context.Context, rec MemoryRecord) error {
	if err := s.base.StoreMemory(ctx, rec); err != nil {
		return err
	}
	return s.UpsertGraph(ctx, rec.Note, rec.Note.Links)
}

func (s *Neo4jStore) SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error) {
	return s.base.SearchMemory(ctx, queryVector, limit)
}

func (s *Neo4jStore) GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error) {
	return s.base.GetByIDs(ctx, ids)
}

func (s *Neo4jStore) UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error {
	return s.base.UpdateEmbedding(ctx, id, embedding, vector)
}

func (s *Neo4jStore) DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error {
	if err := s.base.DeleteMemory(ctx, ids); err != nil {
		return err
	}
	return s.withSession(ctx, AccessModeWrite, func(sess neo4jSession) error {
		for _, id := range ids {
			if _, err := sess.Run(ctx, `MATCH (n:Memory {id: $id}) DETACH DELETE n`, map[string]any{"id": id.String()}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Neo4jStore) Iterate(ctx context.Context, fn func(MemoryRecord) bool) error {
	return s.base.Iterate(ctx, fn)
}

func (s *Neo4jStore) Count(ctx context.Context) (int, error) {
	return s.base.Count(ctx)
}

func (s *Neo4jStore) withSession(ctx context.Context, mode Neo4jAccessMode, fn func(neo4jSession) error) error {
	sess, err := s.driver.NewSession(ctx, Neo4jSessionConfig{AccessMode: mode, DatabaseName: s.database})
	if err != nil {
		return memtype.NewUpstreamError("neo4j", err)
	}
	defer sess.Close(ctx)
	return fn(sess)
}

// UpsertGraph persists note's node and its outgoing links as Cypher
// MERGE statements.
func (s *Neo4jStore) UpsertGraph(ctx context.Context, note memtype.MemoryNote, links []memtype.MemoryLink) error {
	return s.withSession(ctx, AccessModeWrite, func(sess neo4jSession) error {
		if _, err := sess.Run(ctx, `MERGE (n:Memory {id: $id}) SET n.type = $type`, map[string]any{
			"id":   note.ID.String(),
			"type": note.Type.String(),
		}); err != nil {
			return err
		}
		for _, l := range links {
			prob := 0.0
			if pl, ok := l.Type.(memtype.ProcLink); ok {
				prob = pl.TransitionProb
			}
			if _, err := sess.Run(ctx, `
				MATCH (from:Memory {id: $from})
				MERGE (to:Memory {id: $to})
				MERGE (from)-[r:LINKS_TO {link_id: $link_id}]->(to)
				SET r.transition_prob = $prob`, map[string]any{
				"from":    l.From.String(),
				"to":      l.To.String(),
				"link_id": l.ID.String(),
				"prob":    prob,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Neighborhood traverses up to hops edges outward from seedIDs and
// resolves the reached memory ids via the base store.
func (s *Neo4jStore) Neighborhood(ctx context.Context, seedIDs []memtype.MemoryId, hops, limit int) ([]MemoryRecord, error) {
	seedStrs := make([]string, len(seedIDs))
	for i, id := range seedIDs {
		seedStrs[i] = id.String()
	}

	var reached []memtype.MemoryId
	err := s.withSession(ctx, AccessModeRead, func(sess neo4jSession) error {
		query := `
			MATCH (seed:Memory) WHERE seed.id IN $seeds
			MATCH (seed)-[:LINKS_TO*1..` + depthLiteral(hops) + `]->(n:Memory)
			RETURN DISTINCT n.id AS id LIMIT $limit`
		res, err := sess.Run(ctx, query, map[string]any{"seeds": seedStrs, "limit": limit})
		if err != nil {
			return err
		}
		defer res.Close(ctx)
		for res.Next(ctx) {
			if v, ok := res.Record().Get("id"); ok {
				if s, ok := v.(string); ok {
					if id, err := memtype.ParseMemoryId(s); err == nil {
						reached = append(reached, id)
					}
				}
			}
		}
		return res.Err()
	})
	if err != nil {
		return nil, err
	}
	return s.base.GetByIDs(ctx, reached)
}

func depthLiteral(hops int) string {
	if hops < 1 {
		hops = 1
	}
	digits := make([]byte, 0, 4)
	for hops > 0 {
		digits = append([]byte{byte('0' + hops%10)}, digits...)
		hops /= 10
	}
	return string(digits)
}
