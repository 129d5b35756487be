// Package ppr implements personalized PageRank over a MemoryCluster's
// graph. Dangling mass is redistributed only across the personalization
// support rather than uniformly over all nodes, which biases diffusion
// toward the seeded ids instead of leaking rank to the whole graph.
package ppr

import (
	"fmt"

	"github.com/latticeforge/mnemo/internal/cluster"
	"github.com/latticeforge/mnemo/internal/memtype"
)

// Run computes personalized PageRank seeded at personalization, with
// damping factor alpha and a fixed iteration count. personalization need
// not already sum to 1; it is normalized. Ids absent from the cluster (or
// with a non-positive weight) do not contribute to the seed and are
// dropped before normalization.
func Run(c *cluster.MemoryCluster, personalization map[memtype.MemoryId]float64, alpha float64, iterations int) (map[memtype.MemoryId]float64, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: damping factor %v out of [0,1]", memtype.ErrInvalidInput, alpha)
	}

	alive := c.AliveIndices()
	if len(alive) == 0 {
		return map[memtype.MemoryId]float64{}, nil
	}

	piIdx := make(map[cluster.NodeIndex]float64)
	var total float64
	for id, w := range personalization {
		if w <= 0 {
			continue
		}
		idx, ok := c.IndexOf(id)
		if !ok {
			continue
		}
		piIdx[idx] += w
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: personalization weights must sum to a positive total over nodes present in the cluster", memtype.ErrInvalidInput)
	}
	for idx := range piIdx {
		piIdx[idx] /= total
	}

	r := make(map[cluster.NodeIndex]float64, len(alive))
	for idx := range piIdx {
		r[idx] = piIdx[idx]
	}

	targets := make(map[cluster.NodeIndex][]cluster.NodeIndex, len(alive))
	for _, idx := range alive {
		for _, e := range c.OutEdges(idx) {
			targets[idx] = append(targets[idx], e.To)
		}
	}

	for n := 0; n < iterations; n++ {
		next := make(map[cluster.NodeIndex]float64, len(alive))
		for _, i := range alive {
			ri := r[i]
			if ri == 0 {
				continue
			}
			out := targets[i]
			if deg := len(out); deg > 0 {
				share := alpha * ri / float64(deg)
				for _, j := range out {
					next[j] += share
				}
			} else if len(piIdx) > 0 {
				share := alpha * ri / float64(len(piIdx))
				for j := range piIdx {
					next[j] += share
				}
			}
		}
		for j, p := range piIdx {
			next[j] += (1 - alpha) * p
		}

		var sum float64
		for _, v := range next {
			sum += v
		}
		if sum > 0 {
			for j := range next {
				next[j] /= sum
			}
		}
		r = next
	}

	out := make(map[memtype.MemoryId]float64, len(alive))
	for _, idx := range alive {
		id, _ := c.IDForIndex(idx)
		out[id] = r[idx]
	}
	return out, nil
}
