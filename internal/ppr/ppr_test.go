package ppr

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/latticeforge/mnemo/internal/cluster"
	"github.com/latticeforge/mnemo/internal/memtype"
)

// toyGraph builds A->B, A->C, B->C, C->D with uniform-probability proc
// links, returning the cluster and the node ids in A,B,C,D order.
func toyGraph(t *testing.T) (*cluster.MemoryCluster, [4]memtype.MemoryId) {
	t.Helper()
	c := cluster.New(zerolog.Nop())
	var ids [4]memtype.MemoryId
	for i := range ids {
		ids[i] = memtype.NewMemoryId()
	}
	a, b, cc, d := ids[0], ids[1], ids[2], ids[3]

	note := func(id memtype.MemoryId, links ...memtype.MemoryLink) memtype.MemoryNote {
		n, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Now()).
			WithSemantic(memtype.SemanticData{Content: "x"}).
			WithLinks(links...).
			Build()
		if err != nil {
			t.Fatalf("build note: %v", err)
		}
		return n
	}
	link := func(from, to memtype.MemoryId) memtype.MemoryLink {
		return memtype.MemoryLink{ID: memtype.NewLinkId(), From: from, To: to, Type: memtype.ProcLink{TransitionProb: 1}}
	}

	c.MergeNode(cluster.EmbeddedNote{Note: note(a, link(a, b), link(a, cc))})
	c.MergeNode(cluster.EmbeddedNote{Note: note(b, link(b, cc))})
	c.MergeNode(cluster.EmbeddedNote{Note: note(cc, link(cc, d))})
	c.MergeNode(cluster.EmbeddedNote{Note: note(d)})

	return c, ids
}

func closeEnough(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: want ~%v, got %v (tolerance %v)", label, want, got, tol)
	}
}

func TestPPRSeedA(t *testing.T) {
	c, ids := toyGraph(t)
	a, b, cc, d := ids[0], ids[1], ids[2], ids[3]
	r, err := Run(c, map[memtype.MemoryId]float64{a: 1}, 0.15, 15)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	closeEnough(t, r[a], 0.852, 0.03, "A")
	closeEnough(t, r[b], 0.064, 0.03, "B")
	closeEnough(t, r[cc], 0.073, 0.03, "C")
	closeEnough(t, r[d], 0.011, 0.03, "D")

	var sum float64
	for _, v := range r {
		sum += v
	}
	closeEnough(t, sum, 1, 1e-6, "sum of ranks")
}

func TestPPRSeedB(t *testing.T) {
	c, ids := toyGraph(t)
	a, b, cc, d := ids[0], ids[1], ids[2], ids[3]
	r, err := Run(c, map[memtype.MemoryId]float64{b: 1}, 0.15, 15)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r[a] != 0 {
		t.Errorf("A is unreachable from seed B and must get no walk-term mass, got %v", r[a])
	}
	closeEnough(t, r[b], 0.853, 0.03, "B")
	closeEnough(t, r[cc], 0.128, 0.03, "C")
	closeEnough(t, r[d], 0.019, 0.03, "D")
}

func TestPPRSeedAB(t *testing.T) {
	c, ids := toyGraph(t)
	a, b, cc, d := ids[0], ids[1], ids[2], ids[3]
	r, err := Run(c, map[memtype.MemoryId]float64{a: 1, b: 1}, 0.15, 15)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	closeEnough(t, r[a], 0.426, 0.04, "A")
	closeEnough(t, r[b], 0.458, 0.04, "B")
	closeEnough(t, r[cc], 0.101, 0.04, "C")
	closeEnough(t, r[d], 0.005, 0.04, "D")
}

func TestPPRSelfLoopConvergesToSeed(t *testing.T) {
	c := cluster.New(zerolog.Nop())
	id := memtype.NewMemoryId()
	selfLink := memtype.MemoryLink{ID: memtype.NewLinkId(), From: id, To: id, Type: memtype.ProcLink{TransitionProb: 1}}
	note, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Now()).
		WithSemantic(memtype.SemanticData{Content: "s"}).
		WithLinks(selfLink).
		Build()
	if err != nil {
		t.Fatalf("build note: %v", err)
	}
	c.MergeNode(cluster.EmbeddedNote{Note: note})

	r, err := Run(c, map[memtype.MemoryId]float64{id: 1}, 0.15, 25)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	closeEnough(t, r[id], 1, 1e-6, "self-loop seed")
}

func TestPPREmptyGraph(t *testing.T) {
	c := cluster.New(zerolog.Nop())
	r, err := Run(c, map[memtype.MemoryId]float64{memtype.NewMemoryId(): 1}, 0.15, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r) != 0 {
		t.Fatalf("want empty result for an empty graph, got %v", r)
	}
}

func TestPPRRejectsInvalidAlpha(t *testing.T) {
	c, ids := toyGraph(t)
	if _, err := Run(c, map[memtype.MemoryId]float64{ids[0]: 1}, 1.5, 5); err == nil {
		t.Fatalf("expected an error for alpha out of [0,1]")
	}
}
