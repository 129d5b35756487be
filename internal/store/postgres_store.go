package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// PostgresStore persists memories as rows in a single table, with the note
// and field embedding stored as JSON text columns and the representative
// ANN vector as a Postgres float8[] array literal, avoiding a dependency
// on any pgvector-specific extension.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

var _ VectorStore = (*PostgresStore)(nil)
var _ SchemaInitializer = (*PostgresStore)(nil)

// NewPostgresStore connects to connString and returns a store backed by
// the given table name.
func NewPostgresStore(ctx context.Context, connString, table string) (*PostgresStore, error) {
	if connString == "" {
		return nil, errors.New("store: postgres connection string is required")
	}
	if table == "" {
		table = "mnemo_memories"
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, memtype.NewUpstreamError("postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, memtype.NewUpstreamError("postgres", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the connection pool.
func (ps *PostgresStore) Close() {
	if ps != nil && ps.pool != nil {
		ps.pool.Close()
	}
}

// CreateSchema creates the backing table if it does not exist; no index
// beyond the primary key is created. schemaPath is unused (no external schema file needed); kept to
// satisfy SchemaInitializer alongside the other adapters.
func (ps *PostgresStore) CreateSchema(ctx context.Context, _ string) error {
	_, err := ps.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+ps.table+` (
			id               text PRIMARY KEY,
			note_json        text NOT NULL,
			embedding_json   text,
			vector           float8[],
			last_embedded_at timestamptz
		)`)
	if err != nil {
		return memtype.NewUpstreamError("postgres", err)
	}
	return nil
}

// trimJSON strips leading/trailing '[' and ']' runs from a JSON array
// string, e.g. "[1,2,3]" -> "1,2,3", turning a json.Marshal'd []float64
// into the interior of a Postgres array literal.
func trimJSON(s string) string {
	return strings.Trim(s, "[]")
}

// vectorToArrayLiteral renders v as a Postgres float8[] array literal.
func vectorToArrayLiteral(v vecmath.Vec) (string, error) {
	if len(v) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal([]float64(v))
	if err != nil {
		return "", err
	}
	return "{" + trimJSON(string(data)) + "}", nil
}

// arrayLiteralToVector parses a Postgres float8[] array literal (as
// returned in text form, e.g. "{1,2,3}") back into a vecmath.Vec.
func arrayLiteralToVector(lit string) (vecmath.Vec, error) {
	inner := trimJSON(strings.Trim(lit, "{}"))
	if inner == "" {
		return vecmath.Vec{}, nil
	}
	parts := strings.Split(inner, ",")
	out := make(vecmath.Vec, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (ps *PostgresStore) StoreMemory(ctx context.Context, rec MemoryRecord) error {
	noteJSON, err := json.Marshal(rec.Note)
	if err != nil {
		return err
	}
	embJSON, err := json.Marshal(rec.FullEmbedding)
	if err != nil {
		return err
	}
	vecLit, err := vectorToArrayLiteral(rec.Vector)
	if err != nil {
		return err
	}

	_, err = ps.pool.Exec(ctx, `
		INSERT INTO `+ps.table+` (id, note_json, embedding_json, vector, last_embedded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			note_json = EXCLUDED.note_json,
			embedding_json = EXCLUDED.embedding_json,
			vector = EXCLUDED.vector,
			last_embedded_at = EXCLUDED.last_embedded_at`,
		rec.Note.ID.String(), string(noteJSON), string(embJSON), vecLit, rec.LastEmbeddedAt)
	if err != nil {
		return memtype.NewUpstreamError("postgres", err)
	}
	return nil
}

// SearchMemory ranks rows by cosine similarity to queryVector (a row whose
// vector cannot be compared scores 0), computed in Go after a bulk fetch (no pgvector extension
// assumed). Suitable for small-to-medium tables; a production deployment
// would add pgvector and push this into SQL.
func (ps *PostgresStore) SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := ps.pool.Query(ctx, `SELECT id, note_json, embedding_json, vector, last_embedded_at FROM `+ps.table)
	if err != nil {
		return nil, memtype.NewUpstreamError("postgres", err)
	}
	defer rows.Close()

	var all []scoredPostgresRecord
	for rows.Next() {
		rec, err := scanMemoryRow(rows)
		if err != nil {
			continue
		}
		sim, err := vecmath.Cosine(queryVector, rec.Vector)
		if err != nil {
			sim = 0
		}
		all = append(all, scoredPostgresRecord{rec: rec, score: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, memtype.NewUpstreamError("postgres", err)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]MemoryRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[i].rec
	}
	return out, nil
}

type scoredPostgresRecord struct {
	rec   MemoryRecord
	score float64
}

func scanMemoryRow(rows pgx.Rows) (MemoryRecord, error) {
	var (
		id, noteJSON, embJSON string
		vecLit                *string
		lastEmbedded          *time.Time
	)
	if err := rows.Scan(&id, &noteJSON, &embJSON, &vecLit, &lastEmbedded); err != nil {
		return MemoryRecord{}, err
	}
	var rec MemoryRecord
	if err := json.Unmarshal([]byte(noteJSON), &rec.Note); err != nil {
		return rec, err
	}
	if embJSON != "" {
		if err := json.Unmarshal([]byte(embJSON), &rec.FullEmbedding); err != nil {
			return rec, err
		}
	}
	if vecLit != nil {
		v, err := arrayLiteralToVector(*vecLit)
		if err != nil {
			return rec, err
		}
		rec.Vector = v
	}
	if lastEmbedded != nil {
		rec.LastEmbeddedAt = *lastEmbedded
	}
	return rec, nil
}

func (ps *PostgresStore) GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	rows, err := ps.pool.Query(ctx, `SELECT id, note_json, embedding_json, vector, last_embedded_at FROM `+ps.table+` WHERE id = ANY($1)`, idStrs)
	if err != nil {
		return nil, memtype.NewUpstreamError("postgres", err)
	}
	defer rows.Close()

	var out []MemoryRecord
	for rows.Next() {
		rec, err := scanMemoryRow(rows)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (ps *PostgresStore) UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error {
	embJSON, err := json.Marshal(embedding)
	if err != nil {
		return err
	}
	vecLit, err := vectorToArrayLiteral(vector)
	if err != nil {
		return err
	}
	tag, err := ps.pool.Exec(ctx, `UPDATE `+ps.table+` SET embedding_json = $1, vector = $2, last_embedded_at = $3 WHERE id = $4`,
		string(embJSON), vecLit, time.Now().UTC(), id.String())
	if err != nil {
		return memtype.NewUpstreamError("postgres", err)
	}
	if tag.RowsAffected() == 0 {
		return memtype.ErrNodeNotContained
	}
	return nil
}

func (ps *PostgresStore) DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error {
	if len(ids) == 0 {
		return nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	_, err := ps.pool.Exec(ctx, `DELETE FROM `+ps.table+` WHERE id = ANY($1)`, idStrs)
	if err != nil {
		return memtype.NewUpstreamError("postgres", err)
	}
	return nil
}

func (ps *PostgresStore) Iterate(ctx context.Context, fn func(MemoryRecord) bool) error {
	rows, err := ps.pool.Query(ctx, `SELECT id, note_json, embedding_json, vector, last_embedded_at FROM `+ps.table+` ORDER BY last_embedded_at`)
	if err != nil {
		return memtype.NewUpstreamError("postgres", err)
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanMemoryRow(rows)
		if err != nil {
			return err
		}
		if !fn(rec) {
			break
		}
	}
	return rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := ps.pool.QueryRow(ctx, `SELECT count(*) FROM `+ps.table).Scan(&count); err != nil {
		return 0, memtype.NewUpstreamError("postgres", err)
	}
	return count, nil
}
