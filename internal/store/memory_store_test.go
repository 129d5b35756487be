package store

import (
	"context"
	"testing"
	"time"

	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

func testNote(t *testing.T, id memtype.MemoryId) memtype.MemoryNote {
	t.Helper()
	n, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Now()).
		WithSemantic(memtype.SemanticData{Content: "x"}).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}
	return n
}

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	id := memtype.NewMemoryId()
	rec := MemoryRecord{Note: testNote(t, id), Vector: vecmath.Vec{1, 0, 0}}

	if err := s.StoreMemory(context.Background(), rec); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	n, err := s.Count(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("Count: %v, %d", err, n)
	}

	got, err := s.GetByIDs(context.Background(), []memtype.MemoryId{id})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: %v, %d", err, len(got))
	}

	if err := s.DeleteMemory(context.Background(), []memtype.MemoryId{id}); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	n, _ = s.Count(context.Background())
	if n != 0 {
		t.Fatalf("want 0 after delete, got %d", n)
	}
}

func TestInMemoryStoreSearchRanksByCosine(t *testing.T) {
	s := NewInMemoryStore()
	near := memtype.NewMemoryId()
	far := memtype.NewMemoryId()
	s.StoreMemory(context.Background(), MemoryRecord{Note: testNote(t, near), Vector: vecmath.Vec{1, 0}})
	s.StoreMemory(context.Background(), MemoryRecord{Note: testNote(t, far), Vector: vecmath.Vec{0, 1}})

	results, err := s.SearchMemory(context.Background(), vecmath.Vec{1, 0}, 2)
	if err != nil {
		t.Fatalf("SearchMemory: %v", err)
	}
	if len(results) != 2 || results[0].Note.ID != near {
		t.Fatalf("want nearest match first, got %+v", results)
	}
}
