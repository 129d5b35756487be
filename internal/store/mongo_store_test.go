package store

import (
	"testing"
	"time"

	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

func TestMongoDocRoundTrip(t *testing.T) {
	id := memtype.NewMemoryId()
	note, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Unix(0, 0)).
		WithSemantic(memtype.SemanticData{Content: "hello"}).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}

	rec := MemoryRecord{
		Note:           note,
		Vector:         vecmath.Vec{0.1, 0.2, 0.3},
		LastEmbeddedAt: time.Unix(100, 0).UTC(),
	}

	doc, err := mongoDocFromRecord(rec)
	if err != nil {
		t.Fatalf("mongoDocFromRecord: %v", err)
	}
	if doc.ID != id.String() {
		t.Errorf("doc.ID = %q, want %q", doc.ID, id.String())
	}

	got, err := mongoRecordFromDoc(doc)
	if err != nil {
		t.Fatalf("mongoRecordFromDoc: %v", err)
	}
	if got.Note.ID != id {
		t.Errorf("got.Note.ID = %v, want %v", got.Note.ID, id)
	}
	if got.Note.Semantic == nil || got.Note.Semantic.Content != "hello" {
		t.Errorf("got.Note.Semantic = %+v, want Content=hello", got.Note.Semantic)
	}
	if len(got.Vector) != 3 || got.Vector[1] != 0.2 {
		t.Errorf("got.Vector = %v", got.Vector)
	}
	if !got.LastEmbeddedAt.Equal(rec.LastEmbeddedAt) {
		t.Errorf("got.LastEmbeddedAt = %v, want %v", got.LastEmbeddedAt, rec.LastEmbeddedAt)
	}
}
