package memtype

import (
	"testing"
	"time"
)

func TestNoteBuilderLastAccessedBeforeCreate(t *testing.T) {
	now := time.Now()
	b := NewNoteBuilder(NewMemoryId(), Semantic, now).
		WithSemantic(SemanticData{Content: "x"}).
		WithLastAccessedTime(now.Add(-time.Hour))
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for last_accessed_time before create_time")
	}
}

func TestNoteBuilderMissingVariantData(t *testing.T) {
	b := NewNoteBuilder(NewMemoryId(), Semantic, time.Now())
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for missing semantic data")
	}
}

func TestNoteBuilderWrongVariantData(t *testing.T) {
	b := NewNoteBuilder(NewMemoryId(), Situational, time.Now()).
		WithSemantic(SemanticData{Content: "x"})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for semantic data on situational memory")
	}
}

func TestNoteBuilderZeroID(t *testing.T) {
	b := NewNoteBuilder(MemoryId{}, Semantic, time.Now()).
		WithSemantic(SemanticData{Content: "x"})
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestNoteBuilderHappyPath(t *testing.T) {
	id := NewMemoryId()
	now := time.Now()
	n, err := NewNoteBuilder(id, Procedural, now).
		WithTags("greet", "dialogue").
		WithProcedural(ProceduralData{Action: Action{Content: "wave", Type: ActionSkill}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != id || n.Type != Procedural || !n.HasTag("greet") {
		t.Fatalf("unexpected note: %+v", n)
	}
}

func TestMemoryLinkValidate(t *testing.T) {
	l := MemoryLink{From: NewMemoryId(), To: NewMemoryId(), Type: ProcLink{TransitionProb: 1.5}}
	if err := l.Validate(); err == nil {
		t.Fatal("expected error for out-of-range transition probability")
	}
}

func TestSanitizeLinksDropsInvalid(t *testing.T) {
	good := MemoryLink{From: NewMemoryId(), To: NewMemoryId(), Type: ProcLink{TransitionProb: 0.5}}
	bad := MemoryLink{From: MemoryId{}, To: NewMemoryId(), Type: ProcLink{TransitionProb: 0.5}}
	valid, failures := SanitizeLinks([]MemoryLink{good, bad})
	if len(valid) != 1 || len(failures) != 1 {
		t.Fatalf("want 1 valid/1 failure, got %d/%d", len(valid), len(failures))
	}
}
