// Package diffuse implements matrix-form activation diffusion over a
// MemoryCluster's graph, seeded at a set of starting nodes and propagated
// through edge-intensity-derived transition probabilities.
package diffuse

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/latticeforge/mnemo/internal/cluster"
	"github.com/latticeforge/mnemo/internal/memtype"
)

// Activation pairs a memory id with its final activation level.
type Activation struct {
	ID         memtype.MemoryId
	Activation float64
}

const intensityEpsilon = 1e-9

// Run diffuses activation outward from start, returning ids whose final
// activation exceeds clampThreshold. Iteration stops early once the
// Euclidean step size drops below clampThreshold, or after maxIteration
// sweeps.
func Run(c *cluster.MemoryCluster, start []memtype.MemoryId, alpha float64, maxIteration int, clampThreshold float64) []Activation {
	indices := c.AliveIndices()
	n := len(indices)
	if n == 0 {
		return nil
	}
	pos := make(map[cluster.NodeIndex]int, n)
	for i, idx := range indices {
		pos[idx] = i
	}

	var startPos []int
	for _, id := range start {
		if idx, ok := c.IndexOf(id); ok {
			startPos = append(startPos, pos[idx])
		}
	}
	if len(startPos) == 0 {
		return nil
	}

	a0 := mat.NewVecDense(n, nil)
	uniform := 1.0 / float64(len(startPos))
	for _, p := range startPos {
		a0.SetVec(p, uniform)
	}

	transition := mat.NewDense(n, n, nil)
	for _, idx := range indices {
		j := pos[idx]
		edges := c.OutEdges(idx)
		var totalIntensity float64
		intensities := make(map[int]float64, len(edges))
		for _, e := range edges {
			w := cluster.LinkIntensity(e.Link)
			intensities[pos[e.To]] += w
			totalIntensity += w
		}
		if totalIntensity > intensityEpsilon {
			for k, w := range intensities {
				transition.Set(k, j, w/totalIntensity)
			}
		} else {
			for _, p := range startPos {
				transition.Set(p, j, uniform)
			}
		}
	}

	at := a0
	for iter := 0; iter < maxIteration; iter++ {
		pat := mat.NewVecDense(n, nil)
		pat.MulVec(transition, at)

		next := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			next.SetVec(i, alpha*a0.AtVec(i)+(1-alpha)*pat.AtVec(i))
		}

		var sumSq float64
		for i := 0; i < n; i++ {
			d := next.AtVec(i) - at.AtVec(i)
			sumSq += d * d
		}
		at = next
		if math.Sqrt(sumSq) < clampThreshold {
			break
		}
	}

	out := make([]Activation, 0, n)
	for _, idx := range indices {
		v := at.AtVec(pos[idx])
		if v > clampThreshold {
			id, _ := c.IDForIndex(idx)
			out = append(out, Activation{ID: id, Activation: v})
		}
	}
	return out
}
