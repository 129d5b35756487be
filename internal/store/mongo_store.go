package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// MongoStore persists memories as documents in a MongoDB collection,
// encoding the note and field embedding as JSON strings alongside the
// representative ANN vector, the same "JSON payload beside the vector"
// shape QdrantStore uses.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ VectorStore = (*MongoStore)(nil)
var _ SchemaInitializer = (*MongoStore)(nil)

const mongoCloseTimeout = 5 * time.Second

// NewMongoStore connects to uri and returns a store backed by
// database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("store: mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("store: mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("store: mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, memtype.NewUpstreamError("mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, memtype.NewUpstreamError("mongo", err)
	}
	return &MongoStore{client: client, collection: client.Database(database).Collection(collection)}, nil
}

// Close disconnects the underlying client.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

type mongoMemoryDocument struct {
	ID             string    `bson:"_id"`
	NoteJSON       string    `bson:"note_json"`
	EmbeddingJSON  string    `bson:"embedding_json,omitempty"`
	Vector         []float64 `bson:"vector,omitempty"`
	LastEmbeddedAt time.Time `bson:"last_embedded_at"`
}

func mongoDocFromRecord(rec MemoryRecord) (mongoMemoryDocument, error) {
	noteJSON, err := json.Marshal(rec.Note)
	if err != nil {
		return mongoMemoryDocument{}, err
	}
	embJSON, err := json.Marshal(rec.FullEmbedding)
	if err != nil {
		return mongoMemoryDocument{}, err
	}
	return mongoMemoryDocument{
		ID:             rec.Note.ID.String(),
		NoteJSON:       string(noteJSON),
		EmbeddingJSON:  string(embJSON),
		Vector:         []float64(rec.Vector),
		LastEmbeddedAt: rec.LastEmbeddedAt,
	}, nil
}

func mongoRecordFromDoc(doc mongoMemoryDocument) (MemoryRecord, error) {
	var rec MemoryRecord
	if err := json.Unmarshal([]byte(doc.NoteJSON), &rec.Note); err != nil {
		return rec, err
	}
	if doc.EmbeddingJSON != "" {
		if err := json.Unmarshal([]byte(doc.EmbeddingJSON), &rec.FullEmbedding); err != nil {
			return rec, err
		}
	}
	rec.Vector = vecmath.Vec(doc.Vector)
	rec.LastEmbeddedAt = doc.LastEmbeddedAt
	return rec, nil
}

func (ms *MongoStore) StoreMemory(ctx context.Context, rec MemoryRecord) error {
	doc, err := mongoDocFromRecord(rec)
	if err != nil {
		return err
	}
	_, err = ms.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return memtype.NewUpstreamError("mongo", err)
	}
	return nil
}

// SearchMemory runs an Atlas $vectorSearch aggregation over the vector
// field. Requires an Atlas vector search index named "vector_index" on
// that field; CreateSchema does not create it.
func (ms *MongoStore) SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: "vector_index"},
			{Key: "path", Value: "vector"},
			{Key: "queryVector", Value: []float64(queryVector)},
			{Key: "numCandidates", Value: int64(limit * 10)},
			{Key: "limit", Value: int64(limit)},
		}}},
	}
	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, memtype.NewUpstreamError("mongo", err)
	}
	defer cursor.Close(ctx)

	var out []MemoryRecord
	for cursor.Next(ctx) {
		var doc mongoMemoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return out, err
		}
		rec, err := mongoRecordFromDoc(doc)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, cursor.Err()
}

func (ms *MongoStore) GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	cursor, err := ms.collection.Find(ctx, bson.M{"_id": bson.M{"$in": idStrs}})
	if err != nil {
		return nil, memtype.NewUpstreamError("mongo", err)
	}
	defer cursor.Close(ctx)

	var out []MemoryRecord
	for cursor.Next(ctx) {
		var doc mongoMemoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return out, err
		}
		rec, err := mongoRecordFromDoc(doc)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, cursor.Err()
}

func (ms *MongoStore) UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error {
	embJSON, err := json.Marshal(embedding)
	if err != nil {
		return err
	}
	res, err := ms.collection.UpdateByID(ctx, id.String(), bson.M{
		"$set": bson.M{
			"embedding_json":   string(embJSON),
			"vector":           []float64(vector),
			"last_embedded_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return memtype.NewUpstreamError("mongo", err)
	}
	if res.MatchedCount == 0 {
		return memtype.ErrNodeNotContained
	}
	return nil
}

func (ms *MongoStore) DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error {
	if len(ids) == 0 {
		return nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	_, err := ms.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": idStrs}})
	if err != nil {
		return memtype.NewUpstreamError("mongo", err)
	}
	return nil
}

func (ms *MongoStore) Iterate(ctx context.Context, fn func(MemoryRecord) bool) error {
	cursor, err := ms.collection.Find(ctx, bson.M{})
	if err != nil {
		return memtype.NewUpstreamError("mongo", err)
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc mongoMemoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		rec, err := mongoRecordFromDoc(doc)
		if err != nil {
			continue
		}
		if !fn(rec) {
			break
		}
	}
	return cursor.Err()
}

func (ms *MongoStore) Count(ctx context.Context) (int, error) {
	count, err := ms.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, memtype.NewUpstreamError("mongo", err)
	}
	return int(count), nil
}

// CreateSchema creates a descending index on last_embedded_at. It does not
// create the "vector_index" Atlas vector search index SearchMemory depends
// on. schemaPath is unused (Mongo has no schema
// file analogue); kept to satisfy SchemaInitializer.
func (ms *MongoStore) CreateSchema(ctx context.Context, _ string) error {
	_, err := ms.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "last_embedded_at", Value: -1}},
		Options: options.Index().SetName("last_embedded_at"),
	})
	if err != nil {
		return memtype.NewUpstreamError("mongo", err)
	}
	return nil
}
