package recall_test

import (
	"context"
	"testing"
	"time"

	"github.com/latticeforge/mnemo/internal/embedmodel"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/recall"
	"github.com/latticeforge/mnemo/internal/store"
)

func semanticRecord(t *testing.T, id memtype.MemoryId, text string, links ...memtype.MemoryLink) store.MemoryRecord {
	t.Helper()
	note, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Unix(0, 0)).
		WithSemantic(memtype.SemanticData{Content: text}).
		WithLinks(links...).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}
	return store.MemoryRecord{Note: note, Vector: embedmodel.DummyEmbedding(text)}
}

func link(from, to memtype.MemoryId) memtype.MemoryLink {
	return memtype.MemoryLink{ID: memtype.NewLinkId(), From: from, To: to, Type: memtype.ProcLink{TransitionProb: 1}}
}

// TestRetrieveExpandsChain checks the BFS funnel: a top-1 seed search for
// "alpha" should find A, then depth=2 should pull in B and C along A's
// outgoing link chain, respecting the k*(depth+1) cap.
func TestRetrieveExpandsChain(t *testing.T) {
	ctx := context.Background()
	idA, idB, idC := memtype.NewMemoryId(), memtype.NewMemoryId(), memtype.NewMemoryId()

	linkAB := link(idA, idB)
	linkBC := link(idB, idC)

	recA := semanticRecord(t, idA, "alpha", linkAB)
	recB := semanticRecord(t, idB, "bravo", linkBC)
	recC := semanticRecord(t, idC, "charlie")

	vs := store.NewInMemoryStore()
	for _, r := range []store.MemoryRecord{recA, recB, recC} {
		if err := vs.StoreMemory(ctx, r); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	rc := recall.New(vs, embedmodel.DummyEmbedder{}, 4)
	got, err := rc.Retrieve(ctx, []string{"alpha"}, 1, 2, recall.Filter{AnyType: true})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	ids := make(map[memtype.MemoryId]bool)
	for _, r := range got {
		ids[r.Note.ID] = true
	}
	for _, want := range []memtype.MemoryId{idA, idB, idC} {
		if !ids[want] {
			t.Errorf("expected %s in result, got %d results", want, len(got))
		}
	}

	maxTotal := 1 * (2 + 1)
	if len(got) > maxTotal {
		t.Errorf("len(got) = %d, want <= %d", len(got), maxTotal)
	}
}

// TestRetrieveStopsOnEmptyFrontier confirms a memory with no outgoing
// links terminates expansion early without error.
func TestRetrieveStopsOnEmptyFrontier(t *testing.T) {
	ctx := context.Background()
	idA := memtype.NewMemoryId()
	recA := semanticRecord(t, idA, "solo")

	vs := store.NewInMemoryStore()
	if err := vs.StoreMemory(ctx, recA); err != nil {
		t.Fatalf("store: %v", err)
	}

	rc := recall.New(vs, embedmodel.DummyEmbedder{}, 4)
	got, err := rc.Retrieve(ctx, []string{"solo"}, 1, 3, recall.Filter{AnyType: true})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Note.ID != idA {
		t.Errorf("got %+v, want exactly [A]", got)
	}
}

// TestRetrieveFilterByTag checks that a tag filter excludes non-matching
// seeds from the result even when they rank in the top-k.
func TestRetrieveFilterByTag(t *testing.T) {
	ctx := context.Background()
	idA := memtype.NewMemoryId()
	note, err := memtype.NewNoteBuilder(idA, memtype.Semantic, time.Unix(0, 0)).
		WithSemantic(memtype.SemanticData{Content: "tagged"}).
		WithTags("npc").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rec := store.MemoryRecord{Note: note, Vector: embedmodel.DummyEmbedding("tagged")}

	vs := store.NewInMemoryStore()
	if err := vs.StoreMemory(ctx, rec); err != nil {
		t.Fatalf("store: %v", err)
	}

	rc := recall.New(vs, embedmodel.DummyEmbedder{}, 4)
	got, err := rc.Retrieve(ctx, []string{"tagged"}, 1, 0, recall.Filter{Tags: []string{"item"}})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected tag filter to exclude the untagged-for-item note, got %d", len(got))
	}
}
