package taskset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/latticeforge/mnemo/internal/memtype"
)

// FocusSample draws up to w distinct memories proportionally across tasks
// by their linear focus probability, falling back to uniform reservoir
// sampling over the union of all related notes if any probability is
// non-finite. The returned slice never exceeds w and contains no
// duplicates within a single task's contribution.
func (ts *TaskSet) FocusSample(w int, rng *rand.Rand) []memtype.MemoryId {
	n := len(ts.order)
	if n == 0 || w <= 0 {
		return nil
	}

	probs := make([]float64, n)
	var sum float64
	degenerate := false
	for i, id := range ts.order {
		p := math.Exp(ts.tasks[id].FocusProb)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			degenerate = true
		}
		probs[i] = p
		sum += p
	}
	if degenerate || sum == 0 || math.IsNaN(sum) {
		return ts.fallbackReservoirSample(w, rng)
	}

	expected := make([]float64, n)
	allocated := make([]int, n)
	remaining := w
	for i, id := range ts.order {
		expected[i] = probs[i] / sum * float64(w)
		cap := len(ts.tasks[id].RelatedNotes)
		base := int(math.Floor(expected[i]))
		if base > cap {
			base = cap
		}
		if base > remaining {
			base = remaining
		}
		allocated[i] = base
		remaining -= base
	}

	type fracEntry struct {
		idx int
		fp  float64
	}
	fracs := make([]fracEntry, n)
	for i := range expected {
		fracs[i] = fracEntry{i, expected[i] - math.Floor(expected[i])}
	}
	sort.SliceStable(fracs, func(a, b int) bool { return fracs[a].fp > fracs[b].fp })

	for _, fe := range fracs {
		if remaining <= 0 {
			break
		}
		id := ts.order[fe.idx]
		cap := len(ts.tasks[id].RelatedNotes)
		if allocated[fe.idx] < cap {
			allocated[fe.idx]++
			remaining--
		}
	}

	var out []memtype.MemoryId
	for i, id := range ts.order {
		if allocated[i] == 0 {
			continue
		}
		out = append(out, sampleDistinct(ts.tasks[id].RelatedNotes, allocated[i], rng)...)
	}
	return out
}

// fallbackReservoirSample draws min(w, |union|) distinct memories uniformly
// from the union of every task's related notes.
func (ts *TaskSet) fallbackReservoirSample(w int, rng *rand.Rand) []memtype.MemoryId {
	seen := make(map[memtype.MemoryId]struct{})
	var union []memtype.MemoryId
	for _, id := range ts.order {
		for _, m := range ts.tasks[id].RelatedNotes {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				union = append(union, m)
			}
		}
	}
	size := w
	if size > len(union) {
		size = len(union)
	}
	return sampleDistinct(union, size, rng)
}

// sampleDistinct draws k distinct elements from items uniformly without
// replacement via a partial Fisher-Yates shuffle, leaving items untouched.
func sampleDistinct(items []memtype.MemoryId, k int, rng *rand.Rand) []memtype.MemoryId {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	pool := make([]memtype.MemoryId, len(items))
	copy(pool, items)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
