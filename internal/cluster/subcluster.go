package cluster

import (
	"fmt"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
)

// SubCluster is a borrowed, read-mostly view over a subset of a parent
// MemoryCluster's nodes and edges. Writes that would introduce an id not
// already present in the parent fail with ErrNodeNotContained; reads are
// simply filtered to the view's node/edge sets.
type SubCluster struct {
	parent *MemoryCluster
	nodes  map[memtype.MemoryId]struct{}
	links  map[memtype.LinkId]struct{}
}

// SubCluster carves out a borrowed view restricted to nodeSet and edgeSet.
// Ids outside the parent cluster are simply absent from the view; they do
// not cause an error at construction time (only writes through AddNode are
// rejected for ids the parent itself never held).
func (c *MemoryCluster) SubCluster(nodeSet []memtype.MemoryId, edgeSet []memtype.LinkId) *SubCluster {
	nodes := make(map[memtype.MemoryId]struct{}, len(nodeSet))
	for _, id := range nodeSet {
		nodes[id] = struct{}{}
	}
	links := make(map[memtype.LinkId]struct{}, len(edgeSet))
	for _, lid := range edgeSet {
		links[lid] = struct{}{}
	}
	return &SubCluster{parent: c, nodes: nodes, links: links}
}

// ContainsNode reports whether id is both in the parent cluster and within
// this view's node set.
func (s *SubCluster) ContainsNode(id memtype.MemoryId) bool {
	if _, inView := s.nodes[id]; !inView {
		return false
	}
	return s.parent.ContainsNode(id)
}

// GetNode returns the note for id if it is alive in the parent and within
// the view.
func (s *SubCluster) GetNode(id memtype.MemoryId) (memtype.MemoryNote, bool) {
	if _, inView := s.nodes[id]; !inView {
		return memtype.MemoryNote{}, false
	}
	return s.parent.GetNode(id)
}

// AddNode adds id to the view's node set. It fails with ErrNodeNotContained
// if id is absent from the super-cluster: a view can only ever narrow the
// parent, never introduce new nodes.
func (s *SubCluster) AddNode(id memtype.MemoryId) error {
	if !s.parent.ContainsNode(id) {
		return fmt.Errorf("%w: %s", memtype.ErrNodeNotContained, id)
	}
	s.nodes[id] = struct{}{}
	return nil
}

// EdgesDirected yields the link ids of edges incident to id in the given
// direction, filtered to this view's edge set.
func (s *SubCluster) EdgesDirected(id memtype.MemoryId, dir Direction) []memtype.LinkId {
	if !s.ContainsNode(id) {
		return nil
	}
	all := s.parent.EdgesDirected(id, dir)
	out := make([]memtype.LinkId, 0, len(all))
	for _, lid := range all {
		if _, ok := s.links[lid]; ok {
			out = append(out, lid)
		}
	}
	return out
}

// GetEmbedding returns the parent's stored embedding for id, restricted to
// the view.
func (s *SubCluster) GetEmbedding(id memtype.MemoryId) (fieldembed.MemoryEmbedding, bool) {
	if _, inView := s.nodes[id]; !inView {
		return fieldembed.MemoryEmbedding{}, false
	}
	return s.parent.GetEmbedding(id)
}

// AllNodeIDs returns the view's alive node ids, giving a view the same
// candidate-enumeration surface as its parent cluster.
func (s *SubCluster) AllNodeIDs() []memtype.MemoryId {
	return s.NodeIDs()
}

// NodeIDs returns the view's node ids that are currently alive in the
// parent cluster.
func (s *SubCluster) NodeIDs() []memtype.MemoryId {
	out := make([]memtype.MemoryId, 0, len(s.nodes))
	for id := range s.nodes {
		if s.parent.ContainsNode(id) {
			out = append(out, id)
		}
	}
	return out
}
