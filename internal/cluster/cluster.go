// Package cluster implements MemoryCluster: a stable-indexed directed graph
// over typed memory nodes and typed links, with an embedding side-store and
// a pending-edge buffer for edges whose target has not yet arrived.
package cluster

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
)

// NodeIndex is a stable handle into the cluster's backing graph. Indices
// come from a monotonically increasing counter and are never reused, even
// after the node they named is removed.
type NodeIndex int64

// EmbeddedNote is the fused (note, embedding) pair the cluster's insertion
// algorithm operates on. Embedding may be nil: absence is permitted (and
// logged), per the cluster's invariant that an embedding_store entry
// exists only once an embedding has actually been computed.
type EmbeddedNote struct {
	Note      memtype.MemoryNote
	Embedding *fieldembed.MemoryEmbedding
}

// linkLine is the gonum graph.Line implementation carrying a MemoryLink
// payload between two stable node indices. A multigraph backing is
// required: links are identified independently of their endpoints, so
// parallel edges and self-loops are both legal.
type linkLine struct {
	f, t graph.Node
	uid  int64
	Link memtype.MemoryLink
}

func (l linkLine) From() graph.Node         { return l.f }
func (l linkLine) To() graph.Node           { return l.t }
func (l linkLine) ID() int64                { return l.uid }
func (l linkLine) ReversedLine() graph.Line { return linkLine{f: l.t, t: l.f, uid: l.uid, Link: l.Link} }

type edgeRef struct {
	from, to NodeIndex
}

type pendingEdge struct {
	fromIdx NodeIndex
	link    memtype.MemoryLink
}

// Direction selects which incident edges EdgesDirected yields.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionBoth
)

// MemoryCluster is the engine's exclusive owner of nodes, edges, and
// embeddings. It is single-writer: callers must serialize mutation
// externally, the cluster performs no internal locking (per the engine's
// concurrency model).
type MemoryCluster struct {
	graph      *multi.DirectedGraph
	nextIndex  int64
	nextLineID int64

	idToIndex map[memtype.MemoryId]NodeIndex
	indexToID map[NodeIndex]memtype.MemoryId
	notes     map[NodeIndex]memtype.MemoryNote

	embeddings map[memtype.MemoryId]fieldembed.MemoryEmbedding

	linkIDToEdge map[memtype.LinkId]edgeRef

	// incompletelyLinked[targetID] holds edges whose target id has not
	// yet been inserted, in insertion order.
	incompletelyLinked map[memtype.MemoryId][]pendingEdge

	log zerolog.Logger
}

// New creates an empty MemoryCluster.
func New(logger zerolog.Logger) *MemoryCluster {
	return &MemoryCluster{
		graph:              multi.NewDirectedGraph(),
		idToIndex:          make(map[memtype.MemoryId]NodeIndex),
		indexToID:          make(map[NodeIndex]memtype.MemoryId),
		notes:              make(map[NodeIndex]memtype.MemoryNote),
		embeddings:         make(map[memtype.MemoryId]fieldembed.MemoryEmbedding),
		linkIDToEdge:       make(map[memtype.LinkId]edgeRef),
		incompletelyLinked: make(map[memtype.MemoryId][]pendingEdge),
		log:                logger,
	}
}

// ContainsNode reports whether id names a currently alive node.
func (c *MemoryCluster) ContainsNode(id memtype.MemoryId) bool {
	_, ok := c.idToIndex[id]
	return ok
}

// GetNode returns the note for id, if alive.
func (c *MemoryCluster) GetNode(id memtype.MemoryId) (memtype.MemoryNote, bool) {
	idx, ok := c.idToIndex[id]
	if !ok {
		return memtype.MemoryNote{}, false
	}
	n, ok := c.notes[idx]
	return n, ok
}

// GetEmbedding returns the stored embedding for id, if one has been
// computed. Absence is permitted and is not an error.
func (c *MemoryCluster) GetEmbedding(id memtype.MemoryId) (fieldembed.MemoryEmbedding, bool) {
	e, ok := c.embeddings[id]
	return e, ok
}

// IndexOf returns the stable index for an alive id.
func (c *MemoryCluster) IndexOf(id memtype.MemoryId) (NodeIndex, bool) {
	idx, ok := c.idToIndex[id]
	return idx, ok
}

// NodeCount returns the number of currently alive nodes.
func (c *MemoryCluster) NodeCount() int { return len(c.idToIndex) }

// EdgeCount returns the number of currently alive edges (parallel edges
// counted individually).
func (c *MemoryCluster) EdgeCount() int { return len(c.linkIDToEdge) }

// MergeNode implements the cluster's insertion algorithm: if id is already
// alive, its retrieval count is incremented and its existing index
// returned; otherwise a new index is allocated, the embedding (if any) is
// stored, the note's own outgoing links are submitted via MergeEdge, and
// any pending edges addressed to this id are drained in insertion order.
func (c *MemoryCluster) MergeNode(en EmbeddedNote) NodeIndex {
	id := en.Note.ID
	if idx, ok := c.idToIndex[id]; ok {
		n := c.notes[idx]
		n.RetrievalCount++
		c.notes[idx] = n
		return idx
	}

	idx := NodeIndex(c.nextIndex)
	c.nextIndex++
	c.graph.AddNode(multi.Node(idx))
	c.idToIndex[id] = idx
	c.indexToID[idx] = id
	c.notes[idx] = en.Note
	if en.Embedding != nil {
		c.embeddings[id] = *en.Embedding
	} else {
		c.log.Warn().Str("memory_id", id.String()).Msg("cluster: node merged without an embedding")
	}

	for _, link := range en.Note.Links {
		c.MergeEdge(idx, link)
	}

	if pending, ok := c.incompletelyLinked[id]; ok {
		delete(c.incompletelyLinked, id)
		for _, p := range pending {
			c.MergeEdge(p.fromIdx, p.link)
		}
	}

	return idx
}

// AddSingleNode inserts one fused (note, embedding) pair, refreshing the
// retrieval count if the id is already alive.
func (c *MemoryCluster) AddSingleNode(en EmbeddedNote) NodeIndex {
	return c.MergeNode(en)
}

// Merge inserts a batch of fused notes in order; pending edges addressed
// to ids later in the batch materialize as those ids arrive.
func (c *MemoryCluster) Merge(notes []EmbeddedNote) {
	for _, en := range notes {
		c.MergeNode(en)
	}
}

// MergeEdge implements the cluster's edge-merge algorithm. If the source
// index is not alive the edge is logged and dropped. If the target id
// resolves to an alive index and the link id is not already registered,
// the edge is inserted; a duplicate link id is silently ignored. Otherwise
// the edge is buffered in incompletelyLinked until its target arrives.
func (c *MemoryCluster) MergeEdge(fromIdx NodeIndex, link memtype.MemoryLink) {
	if _, ok := c.indexToID[fromIdx]; !ok {
		c.log.Warn().Int64("from_index", int64(fromIdx)).Msg("cluster: merge_edge on a dead source index; dropped")
		return
	}

	toIdx, targetAlive := c.idToIndex[link.To]
	if !targetAlive {
		c.incompletelyLinked[link.To] = append(c.incompletelyLinked[link.To], pendingEdge{fromIdx: fromIdx, link: link})
		return
	}

	if _, dup := c.linkIDToEdge[link.ID]; dup {
		return
	}

	uid := c.nextLineID
	c.nextLineID++
	c.graph.SetLine(linkLine{f: multi.Node(fromIdx), t: multi.Node(toIdx), uid: uid, Link: link})
	c.linkIDToEdge[link.ID] = edgeRef{from: fromIdx, to: toIdx}
}

// RemoveSingleNode deletes id's entry, embedding, incident edges, and any
// pending-edge references whose source was this node, returning the
// removed note if it was alive.
func (c *MemoryCluster) RemoveSingleNode(id memtype.MemoryId) (memtype.MemoryNote, bool) {
	idx, ok := c.idToIndex[id]
	if !ok {
		return memtype.MemoryNote{}, false
	}

	note := c.notes[idx]

	for lid, ref := range c.linkIDToEdge {
		if ref.from == idx || ref.to == idx {
			delete(c.linkIDToEdge, lid)
		}
	}

	c.graph.RemoveNode(int64(idx))

	delete(c.idToIndex, id)
	delete(c.indexToID, idx)
	delete(c.notes, idx)
	delete(c.embeddings, id)

	for target, pending := range c.incompletelyLinked {
		filtered := pending[:0]
		for _, p := range pending {
			if p.fromIdx != idx {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(c.incompletelyLinked, target)
		} else {
			c.incompletelyLinked[target] = filtered
		}
	}

	return note, true
}

// RefreshNode re-merges a note's links after an external edit, without
// altering its retrieval count or embedding.
func (c *MemoryCluster) RefreshNode(id memtype.MemoryId, links []memtype.MemoryLink) error {
	idx, ok := c.idToIndex[id]
	if !ok {
		return fmt.Errorf("%w: %s", memtype.ErrNodeNotContained, id)
	}
	n := c.notes[idx]
	n.Links = links
	c.notes[idx] = n
	for _, link := range links {
		c.MergeEdge(idx, link)
	}
	return nil
}

// AppendEvolution records an evolution-history entry on an alive note;
// unknown ids are ignored.
func (c *MemoryCluster) AppendEvolution(id memtype.MemoryId, entry string) {
	idx, ok := c.idToIndex[id]
	if !ok {
		return
	}
	n := c.notes[idx]
	n.EvolutionHistory = append(n.EvolutionHistory, entry)
	c.notes[idx] = n
}

// RetrievalIncrement bumps the retrieval count for id on the read path.
func (c *MemoryCluster) RetrievalIncrement(id memtype.MemoryId) {
	idx, ok := c.idToIndex[id]
	if !ok {
		return
	}
	n := c.notes[idx]
	n.RetrievalCount++
	c.notes[idx] = n
}

// PendingCountFor returns the number of edges still buffered waiting for
// target id to arrive (test/introspection helper).
func (c *MemoryCluster) PendingCountFor(id memtype.MemoryId) int {
	return len(c.incompletelyLinked[id])
}

// EdgesDirected yields the link ids of edges incident to id in the given
// direction.
func (c *MemoryCluster) EdgesDirected(id memtype.MemoryId, dir Direction) []memtype.LinkId {
	idx, ok := c.idToIndex[id]
	if !ok {
		return nil
	}
	seen := make(map[memtype.LinkId]struct{})
	var out []memtype.LinkId
	if dir == DirectionOut || dir == DirectionBoth {
		to := c.graph.From(int64(idx))
		for to.Next() {
			addLines(&out, seen, c.graph.Lines(int64(idx), to.Node().ID()))
		}
	}
	if dir == DirectionIn || dir == DirectionBoth {
		from := c.graph.To(int64(idx))
		for from.Next() {
			addLines(&out, seen, c.graph.Lines(from.Node().ID(), int64(idx)))
		}
	}
	return out
}

func addLines(out *[]memtype.LinkId, seen map[memtype.LinkId]struct{}, lines graph.Lines) {
	if lines == nil {
		return
	}
	for lines.Next() {
		ll, ok := lines.Line().(linkLine)
		if !ok {
			continue
		}
		if _, dup := seen[ll.Link.ID]; dup {
			continue
		}
		seen[ll.Link.ID] = struct{}{}
		*out = append(*out, ll.Link.ID)
	}
}

// OutNeighbors returns the alive memory ids id has outgoing edges to.
func (c *MemoryCluster) OutNeighbors(id memtype.MemoryId) []memtype.MemoryId {
	idx, ok := c.idToIndex[id]
	if !ok {
		return nil
	}
	var out []memtype.MemoryId
	it := c.graph.From(int64(idx))
	for it.Next() {
		if nid, ok := c.indexToID[NodeIndex(it.Node().ID())]; ok {
			out = append(out, nid)
		}
	}
	return out
}

// AllNodeIDs returns every currently alive memory id, in no particular
// order.
func (c *MemoryCluster) AllNodeIDs() []memtype.MemoryId {
	out := make([]memtype.MemoryId, 0, len(c.idToIndex))
	for id := range c.idToIndex {
		out = append(out, id)
	}
	return out
}

// AliveIndices returns every currently alive node index, in no particular
// order. Graph-algorithm packages (ppr, diffuse) operate over this index
// space rather than re-deriving it.
func (c *MemoryCluster) AliveIndices() []NodeIndex {
	out := make([]NodeIndex, 0, len(c.indexToID))
	for idx := range c.indexToID {
		out = append(out, idx)
	}
	return out
}

// IDForIndex resolves a stable index back to its memory id, if alive.
func (c *MemoryCluster) IDForIndex(idx NodeIndex) (memtype.MemoryId, bool) {
	id, ok := c.indexToID[idx]
	return id, ok
}

// OutEdge pairs an outgoing edge's target index with its link payload.
type OutEdge struct {
	To   NodeIndex
	Link memtype.MemoryLink
}

// OutEdges returns one entry per outgoing edge from idx, parallel edges
// and self-loops included. Graph-algorithm packages (ppr, diffuse) walk
// these instead of reconstructing adjacency themselves.
func (c *MemoryCluster) OutEdges(idx NodeIndex) []OutEdge {
	if _, ok := c.indexToID[idx]; !ok {
		return nil
	}
	var out []OutEdge
	it := c.graph.From(int64(idx))
	for it.Next() {
		to := it.Node().ID()
		lines := c.graph.Lines(int64(idx), to)
		for lines.Next() {
			if ll, ok := lines.Line().(linkLine); ok {
				out = append(out, OutEdge{To: NodeIndex(to), Link: ll.Link})
			}
		}
	}
	return out
}

// OutDegree returns the number of outgoing edges from idx, self-loops
// included (0 if idx is not alive or is a dangling node).
func (c *MemoryCluster) OutDegree(idx NodeIndex) int {
	return len(c.OutEdges(idx))
}

// LinkIntensity returns the transition intensity a link contributes to
// diffusion: the transition probability for a procedural link, 1 for any
// other link type.
func LinkIntensity(link memtype.MemoryLink) float64 {
	if pl, ok := link.Type.(memtype.ProcLink); ok {
		return pl.TransitionProb
	}
	return 1
}
