// Package recall implements long-term recall with recursive expansion: a
// top-k vector search seeds a bounded breadth-first walk over the memory
// link graph, pulling in each round's link targets until depth is
// exhausted or the frontier runs dry.
package recall

import (
	"context"

	"github.com/latticeforge/mnemo/internal/embedmodel"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/store"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// Filter narrows recall results by tag or memory type. Unless AnyType is
// set, only notes of MemType match, so the zero value matches semantic
// notes only (MemType's zero value); an empty Tags list accepts any tags.
// Filtering happens client-side over whatever the
// retriever returns, keeping filter semantics independent of any one
// index backend.
type Filter struct {
	Tags    []string
	MemType memtype.MemType
	AnyType bool
}

func (f Filter) matches(n memtype.MemoryNote) bool {
	if !f.AnyType && n.Type != f.MemType {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	for _, want := range f.Tags {
		if n.HasTag(want) {
			return true
		}
	}
	return false
}

// Recaller drives the funnel: top-k seed search over a store.VectorStore,
// then up to depth rounds of bounded breadth-first expansion across
// outgoing link targets read straight off each fetched note.
type Recaller struct {
	vectors        store.VectorStore
	model          embedmodel.Model
	maxConcurrency int
}

// New returns a Recaller that embeds query text with model and searches
// vectors for seeds. maxConcurrency bounds how many queries are embedded
// in flight at once (default 10 if non-positive), the same cap
// WorkerPool applies to embedding-provider fan-out.
func New(vectors store.VectorStore, model embedmodel.Model, maxConcurrency int) *Recaller {
	return &Recaller{vectors: vectors, model: model, maxConcurrency: maxConcurrency}
}

// Retrieve executes one top-k vector search per query in queries
// (concatenating results, deduplicated by id), then expands the seed set
// for up to depth rounds by fetching link targets in bulk, returning at
// most k*(depth+1) memories. filter narrows both the seed search results
// and every expansion round.
func (r *Recaller) Retrieve(ctx context.Context, queries []string, k, depth int, filter Filter) ([]store.MemoryRecord, error) {
	visited := make(map[memtype.MemoryId]struct{})
	var result []store.MemoryRecord
	maxTotal := k * (depth + 1)

	add := func(rec store.MemoryRecord) bool {
		id := rec.Note.ID
		if _, ok := visited[id]; ok {
			return false
		}
		if !filter.matches(rec.Note) {
			return false
		}
		visited[id] = struct{}{}
		result = append(result, rec)
		return true
	}

	qvecs, err := embedmodel.ParallelMap(ctx, queries, r.maxConcurrency, func(q string) (vecmath.Vec, error) {
		return r.model.InferWithChunk(ctx, q)
	})
	if err != nil {
		return result, err
	}

	var frontier []memtype.MemoryId
	for _, qvec := range qvecs {
		recs, err := r.vectors.SearchMemory(ctx, qvec, k)
		if err != nil {
			return result, err
		}
		for _, rec := range recs {
			if !add(rec) {
				continue
			}
			frontier = append(frontier, linkTargets(rec.Note)...)
		}
	}

	for round := 0; round < depth && len(frontier) > 0 && len(result) < maxTotal; round++ {
		unvisited := dedupUnvisited(frontier, visited)
		frontier = nil
		if len(unvisited) == 0 {
			break
		}

		recs, err := r.vectors.GetByIDs(ctx, unvisited)
		if err != nil {
			return result, err
		}
		for _, rec := range recs {
			if !add(rec) {
				continue
			}
			frontier = append(frontier, linkTargets(rec.Note)...)
			if len(result) >= maxTotal {
				break
			}
		}
	}

	if len(result) > maxTotal {
		result = result[:maxTotal]
	}
	return result, nil
}

// linkTargets collects the "to" ids of a note's outgoing links, the
// frontier source for recursive expansion.
func linkTargets(n memtype.MemoryNote) []memtype.MemoryId {
	out := make([]memtype.MemoryId, 0, len(n.Links))
	for _, l := range n.Links {
		out = append(out, l.To)
	}
	return out
}

// dedupUnvisited returns the distinct ids in frontier not already in
// visited, preserving first-seen order.
func dedupUnvisited(frontier []memtype.MemoryId, visited map[memtype.MemoryId]struct{}) []memtype.MemoryId {
	seen := make(map[memtype.MemoryId]struct{}, len(frontier))
	out := make([]memtype.MemoryId, 0, len(frontier))
	for _, id := range frontier {
		if _, ok := visited[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
