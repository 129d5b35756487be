package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

type runCall struct {
	query  string
	params map[string]any
}

type fakeDriver struct {
	writeSession *fakeSession
	readSession  *fakeSession
	configs      []Neo4jSessionConfig
	closed       bool
}

func (d *fakeDriver) NewSession(_ context.Context, config Neo4jSessionConfig) (neo4jSession, error) {
	d.configs = append(d.configs, config)
	switch config.AccessMode {
	case AccessModeWrite:
		if d.writeSession == nil {
			d.writeSession = &fakeSession{}
		}
		return d.writeSession, nil
	case AccessModeRead:
		if d.readSession == nil {
			d.readSession = &fakeSession{}
		}
		return d.readSession, nil
	default:
		return nil, errors.New("unknown access mode")
	}
}

func (d *fakeDriver) Close(context.Context) error {
	d.closed = true
	return nil
}

type fakeSession struct {
	runCalls []runCall
	runErr   error
	result   neo4jResult
	closed   bool
}

func (s *fakeSession) Run(_ context.Context, query string, params map[string]any) (neo4jResult, error) {
	s.runCalls = append(s.runCalls, runCall{query: query, params: params})
	if s.runErr != nil {
		return nil, s.runErr
	}
	if s.result != nil {
		return s.result, nil
	}
	return &fakeResult{}, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type fakeResult struct {
	records []map[string]any
	idx     int
	err     error
	closed  bool
}

func (r *fakeResult) Next(_ context.Context) bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeResult) Record() neo4jRecord {
	if r.idx == 0 || r.idx > len(r.records) {
		return fakeRecord(nil)
	}
	return fakeRecord(r.records[r.idx-1])
}

func (r *fakeResult) Err() error { return r.err }

func (r *fakeResult) Close(context.Context) error {
	r.closed = true
	return nil
}

type fakeRecord map[string]any

func (r fakeRecord) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

func TestNewNeo4jStoreValidation(t *testing.T) {
	base := NewInMemoryStore()
	if _, err := NewNeo4jStore(nil, &fakeDriver{}, ""); err == nil {
		t.Fatal("expected error when base store is nil")
	}
	if _, err := NewNeo4jStore(base, nil, ""); err == nil {
		t.Fatal("expected error when driver is nil")
	}
}

func TestNeo4jStoreStoreMemoryUpsertsGraph(t *testing.T) {
	base := NewInMemoryStore()
	driver := &fakeDriver{}
	st, err := NewNeo4jStore(base, driver, "neo")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	from, to := memtype.NewMemoryId(), memtype.NewMemoryId()
	link := memtype.MemoryLink{ID: memtype.NewLinkId(), From: from, To: to, Type: memtype.ProcLink{TransitionProb: 0.25}}
	note, err := memtype.NewNoteBuilder(from, memtype.Semantic, time.Unix(0, 0)).
		WithSemantic(memtype.SemanticData{Content: "n"}).
		WithLinks(link).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}

	rec := MemoryRecord{Note: note, Vector: vecmath.Vec{1, 0}}
	if err := st.StoreMemory(context.Background(), rec); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	if n, _ := base.Count(context.Background()); n != 1 {
		t.Fatalf("base store must hold the record, count=%d", n)
	}
	if len(driver.configs) == 0 || driver.configs[0].AccessMode != AccessModeWrite {
		t.Fatalf("expected a write session, configs=%v", driver.configs)
	}
	calls := driver.writeSession.runCalls
	if len(calls) != 2 {
		t.Fatalf("want 1 node MERGE + 1 link MERGE, got %d calls", len(calls))
	}
	if calls[1].params["link_id"] != link.ID.String() {
		t.Fatalf("link MERGE params = %v", calls[1].params)
	}
	if calls[1].params["prob"] != 0.25 {
		t.Fatalf("transition prob not forwarded: %v", calls[1].params["prob"])
	}
	if !driver.writeSession.closed {
		t.Fatal("session must be closed after the upsert")
	}
}

func TestNeo4jStoreNeighborhood(t *testing.T) {
	base := NewInMemoryStore()
	seed, reached := memtype.NewMemoryId(), memtype.NewMemoryId()
	note, err := memtype.NewNoteBuilder(reached, memtype.Semantic, time.Unix(0, 0)).
		WithSemantic(memtype.SemanticData{Content: "r"}).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}
	if err := base.StoreMemory(context.Background(), MemoryRecord{Note: note, Vector: vecmath.Vec{1}}); err != nil {
		t.Fatalf("seed base store: %v", err)
	}

	driver := &fakeDriver{readSession: &fakeSession{
		result: &fakeResult{records: []map[string]any{{"id": reached.String()}}},
	}}
	st, err := NewNeo4jStore(base, driver, "neo")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	got, err := st.Neighborhood(context.Background(), []memtype.MemoryId{seed}, 2, 10)
	if err != nil {
		t.Fatalf("Neighborhood: %v", err)
	}
	if len(got) != 1 || got[0].Note.ID != reached {
		t.Fatalf("want the reached record resolved via base store, got %+v", got)
	}
	calls := driver.readSession.runCalls
	if len(calls) != 1 || !strings.Contains(calls[0].query, "*1..2") {
		t.Fatalf("want a depth-2 variable-length traversal, got %v", calls)
	}
}
