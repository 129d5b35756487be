package cluster

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/latticeforge/mnemo/internal/memtype"
)

func newTestLogger() zerolog.Logger {
	return zerolog.Nop()
}

func semanticNote(id memtype.MemoryId, content string, links ...memtype.MemoryLink) memtype.MemoryNote {
	n, err := memtype.NewNoteBuilder(id, memtype.Semantic, time.Now()).
		WithSemantic(memtype.SemanticData{Content: content}).
		WithLinks(links...).
		Build()
	if err != nil {
		panic(err)
	}
	return n
}

func procLink(from, to memtype.MemoryId, prob float64) memtype.MemoryLink {
	return memtype.MemoryLink{ID: memtype.NewLinkId(), From: from, To: to, Type: memtype.ProcLink{TransitionProb: prob}}
}

func TestMergeNodeThenRemoveRoundTrip(t *testing.T) {
	c := New(newTestLogger())
	id := memtype.NewMemoryId()
	note := semanticNote(id, "x")
	c.MergeNode(EmbeddedNote{Note: note})
	if !c.ContainsNode(id) {
		t.Fatalf("expected node to be contained after merge")
	}
	if _, ok := c.RemoveSingleNode(id); !ok {
		t.Fatalf("expected removal to report success")
	}
	if c.ContainsNode(id) {
		t.Fatalf("expected node to be absent after removal")
	}
}

func TestMergeNodeExistingIncrementsRetrievalCount(t *testing.T) {
	c := New(newTestLogger())
	id := memtype.NewMemoryId()
	note := semanticNote(id, "x")
	c.MergeNode(EmbeddedNote{Note: note})
	c.MergeNode(EmbeddedNote{Note: note})
	n, ok := c.GetNode(id)
	if !ok {
		t.Fatalf("expected node present")
	}
	if n.RetrievalCount != 1 {
		t.Fatalf("want retrieval count 1 after one re-merge, got %d", n.RetrievalCount)
	}
}

func TestMergeEdgeDuplicateLinkIDIsNoOp(t *testing.T) {
	c := New(newTestLogger())
	a, b := memtype.NewMemoryId(), memtype.NewMemoryId()
	link := procLink(a, b, 0.5)
	c.MergeNode(EmbeddedNote{Note: semanticNote(a, "a")})
	c.MergeNode(EmbeddedNote{Note: semanticNote(b, "b")})

	c.MergeEdge(mustIndex(t, c, a), link)
	before := c.EdgeCount()
	c.MergeEdge(mustIndex(t, c, a), link)
	if c.EdgeCount() != before {
		t.Fatalf("duplicate link id insertion must be a no-op, edge count changed from %d to %d", before, c.EdgeCount())
	}
}

func TestLateBindingEdgeMaterializesOnTargetArrival(t *testing.T) {
	c := New(newTestLogger())
	x, y := memtype.NewMemoryId(), memtype.NewMemoryId()
	link := procLink(x, y, 0.9)

	c.MergeNode(EmbeddedNote{Note: semanticNote(x, "x", link)})
	if !c.ContainsNode(x) {
		t.Fatalf("x should be present even though its link target does not exist yet")
	}
	if c.EdgeCount() != 0 {
		t.Fatalf("edge must be pending, not materialized, before y exists")
	}
	if c.PendingCountFor(y) != 1 {
		t.Fatalf("want 1 pending edge addressed to y, got %d", c.PendingCountFor(y))
	}

	c.MergeNode(EmbeddedNote{Note: semanticNote(y, "y")})
	if c.EdgeCount() != 1 {
		t.Fatalf("want edge materialized once y arrives, got edge count %d", c.EdgeCount())
	}
	if c.PendingCountFor(y) != 0 {
		t.Fatalf("pending list for y must be drained after materialization")
	}
}

func TestMergeEdgeDeadSourceIsDroppedNotPanicked(t *testing.T) {
	c := New(newTestLogger())
	b := memtype.NewMemoryId()
	c.MergeNode(EmbeddedNote{Note: semanticNote(b, "b")})
	link := procLink(memtype.NewMemoryId(), b, 0.1)
	// fromIdx 999 was never allocated; this must log and drop, not panic.
	c.MergeEdge(NodeIndex(999), link)
	if c.EdgeCount() != 0 {
		t.Fatalf("edge from a dead index must not be inserted")
	}
}

func TestRemoveNodePurgesPendingEdgesFromIt(t *testing.T) {
	c := New(newTestLogger())
	x, y := memtype.NewMemoryId(), memtype.NewMemoryId()
	link := procLink(x, y, 0.2)
	c.MergeNode(EmbeddedNote{Note: semanticNote(x, "x", link)})
	if c.PendingCountFor(y) != 1 {
		t.Fatalf("expected pending edge before removal")
	}
	c.RemoveSingleNode(x)
	if c.PendingCountFor(y) != 0 {
		t.Fatalf("pending edges sourced from a removed node must be purged")
	}
}

func TestSubClusterAddNodeRejectsUnknownID(t *testing.T) {
	c := New(newTestLogger())
	known := memtype.NewMemoryId()
	c.MergeNode(EmbeddedNote{Note: semanticNote(known, "k")})
	view := c.SubCluster([]memtype.MemoryId{known}, nil)

	unknown := memtype.NewMemoryId()
	if err := view.AddNode(unknown); err == nil {
		t.Fatalf("expected NodeNotContained for an id absent from the super-cluster")
	}
	if err := view.AddNode(known); err != nil {
		t.Fatalf("adding an id present in the super-cluster must succeed, got %v", err)
	}
}

func TestEdgesDirectedBoth(t *testing.T) {
	c := New(newTestLogger())
	a, b, d := memtype.NewMemoryId(), memtype.NewMemoryId(), memtype.NewMemoryId()
	ab := procLink(a, b, 0.4)
	db := procLink(d, b, 0.6)
	c.MergeNode(EmbeddedNote{Note: semanticNote(a, "a", ab)})
	c.MergeNode(EmbeddedNote{Note: semanticNote(d, "d", db)})
	c.MergeNode(EmbeddedNote{Note: semanticNote(b, "b")})

	both := c.EdgesDirected(b, DirectionBoth)
	if len(both) != 2 {
		t.Fatalf("want 2 incident edges on b, got %d", len(both))
	}
	out := c.EdgesDirected(a, DirectionOut)
	if len(out) != 1 || out[0] != ab.ID {
		t.Fatalf("want a's single outgoing edge to be ab, got %v", out)
	}
}

func mustIndex(t *testing.T, c *MemoryCluster, id memtype.MemoryId) NodeIndex {
	t.Helper()
	idx, ok := c.IndexOf(id)
	if !ok {
		t.Fatalf("expected %s to have a live index", id)
	}
	return idx
}
