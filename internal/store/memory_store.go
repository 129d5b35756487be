package store

import (
	"context"
	"sort"
	"sync"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// InMemoryStore is a mutex-guarded map-backed VectorStore, used for tests
// and small single-process deployments. SearchMemory performs a brute
// force cosine-ranked scan.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[memtype.MemoryId]MemoryRecord
}

var _ VectorStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[memtype.MemoryId]MemoryRecord)}
}

func (s *InMemoryStore) StoreMemory(ctx context.Context, rec MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Note.ID] = rec
	return nil
}

func (s *InMemoryStore) SearchMemory(ctx context.Context, queryVector vecmath.Vec, limit int) ([]MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec   MemoryRecord
		score float64
	}
	all := make([]scored, 0, len(s.records))
	for _, r := range s.records {
		sim, err := vecmath.Cosine(queryVector, r.Vector)
		if err != nil {
			sim = 0
		}
		all = append(all, scored{rec: r, score: sim})
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

func (s *InMemoryStore) GetByIDs(ctx context.Context, ids []memtype.MemoryId) ([]MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemoryRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateEmbedding(ctx context.Context, id memtype.MemoryId, embedding fieldembed.MemoryEmbedding, vector vecmath.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return memtype.ErrNodeNotContained
	}
	r.FullEmbedding = embedding
	r.Vector = vector
	s.records[id] = r
	return nil
}

func (s *InMemoryStore) DeleteMemory(ctx context.Context, ids []memtype.MemoryId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *InMemoryStore) Iterate(ctx context.Context, fn func(MemoryRecord) bool) error {
	s.mu.RLock()
	snapshot := make([]MemoryRecord, 0, len(s.records))
	for _, r := range s.records {
		snapshot = append(snapshot, r)
	}
	s.mu.RUnlock()
	for _, r := range snapshot {
		if !fn(r) {
			break
		}
	}
	return nil
}

func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
