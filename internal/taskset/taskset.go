// Package taskset implements the engine's working-memory focus model: a
// set of tasks with log-space focus probabilities, inertia-weighted focus
// shifting, and proportional multi-task sampling.
package taskset

import (
	"math"

	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/probutil"
)

// TaskId identifies a SoulTask. The zero value is never a real task id.
type TaskId string

// DefaultFocus is the sentinel focus value for an empty task set.
const DefaultFocus TaskId = ""

// SoulTask is one entry in the working-memory task set.
type SoulTask struct {
	Summary      string
	RelatedNotes []memtype.MemoryId
	FocusProb    float64 // log-space
}

// TaskSet holds the working-memory state: tasks keyed by id, the current
// focus, and the inertia constant used by ShiftFocus.
type TaskSet struct {
	tasks   map[TaskId]*SoulTask
	order   []TaskId // insertion order, used for deterministic normalize/argmax/sampling
	focus   TaskId
	inertia float64
}

// New creates an empty TaskSet with the given inertia in (0, 1] (0 is
// accepted and produces an annihilating ShiftFocus, per the engine's
// documented edge-case behavior).
func New(inertia float64) *TaskSet {
	return &TaskSet{
		tasks:   make(map[TaskId]*SoulTask),
		order:   nil,
		focus:   DefaultFocus,
		inertia: inertia,
	}
}

// Focus returns the current focus task id.
func (ts *TaskSet) Focus() TaskId { return ts.focus }

// Len returns the number of tasks currently held.
func (ts *TaskSet) Len() int { return len(ts.tasks) }

// Get returns the task for id, if present.
func (ts *TaskSet) Get(id TaskId) (*SoulTask, bool) {
	t, ok := ts.tasks[id]
	return t, ok
}

// AddTask inserts a new task with initial log-prob 0 (if this is the first
// task) or -ln(n+1) where n is the count before insertion, then
// renormalizes the whole set via focus_normalize.
func (ts *TaskSet) AddTask(id TaskId, summary string, related []memtype.MemoryId) {
	n := len(ts.tasks)
	var initial float64
	if n == 0 {
		initial = 0
	} else {
		initial = -math.Log(float64(n + 1))
	}
	ts.tasks[id] = &SoulTask{Summary: summary, RelatedNotes: related, FocusProb: initial}
	ts.order = append(ts.order, id)
	ts.normalize()
	if ts.focus == DefaultFocus {
		ts.focus = id
	}
}

// RemoveTask deletes a task from the set and renormalizes the remainder.
func (ts *TaskSet) RemoveTask(id TaskId) {
	if _, ok := ts.tasks[id]; !ok {
		return
	}
	delete(ts.tasks, id)
	for i, oid := range ts.order {
		if oid == id {
			ts.order = append(ts.order[:i], ts.order[i+1:]...)
			break
		}
	}
	if ts.focus == id {
		ts.focus = DefaultFocus
	}
	if len(ts.tasks) > 0 {
		ts.normalize()
		if ts.focus == DefaultFocus {
			ts.focus = ts.order[0]
		}
	}
}

// normalize implements focus_normalize: a NaN or +Inf focus_prob anywhere
// resets the whole set to uniform (-ln(n)); otherwise a log-softmax pass
// is applied. -Inf entries are legal (annihilated mass, e.g. after a
// zero-inertia shift) and flow through the softmax as zero probability,
// unless every entry is -Inf, which also forces the uniform reset.
func (ts *TaskSet) normalize() {
	n := len(ts.order)
	if n == 0 {
		return
	}
	needsReset := false
	anyFinite := false
	xs := make([]float64, n)
	for i, id := range ts.order {
		v := ts.tasks[id].FocusProb
		xs[i] = v
		if math.IsNaN(v) || math.IsInf(v, 1) {
			needsReset = true
		}
		if !math.IsInf(v, -1) {
			anyFinite = true
		}
	}
	if needsReset || !anyFinite {
		uniform := -math.Log(float64(n))
		for _, id := range ts.order {
			ts.tasks[id].FocusProb = uniform
		}
		return
	}
	softmaxed := probutil.LogSoftmax(xs)
	for i, id := range ts.order {
		ts.tasks[id].FocusProb = softmaxed[i]
	}
}

// ShiftFocus implements the engine's inertia-weighted focus transition
// given a ranked list of related task ids (rank 0 = most related). Ids in
// ranked that are not present in the set are ignored. Returns the new
// focus.
func (ts *TaskSet) ShiftFocus(ranked []TaskId) TaskId {
	if len(ts.tasks) == 0 {
		ts.focus = DefaultFocus
		return ts.focus
	}
	if len(ranked) == 0 {
		return ts.focus
	}

	lnInertia := math.Log(ts.inertia) // math.Log(0) == -Inf, producing annihilating decay
	for _, id := range ts.order {
		ts.tasks[id].FocusProb += lnInertia
	}

	lnOneMinusInertia := math.Log(1 - ts.inertia) // -Inf when inertia == 1 (no boost)
	for i, id := range ranked {
		t, ok := ts.tasks[id]
		if !ok {
			continue
		}
		lnBoost := lnOneMinusInertia - math.Log(float64(1+i))
		t.FocusProb = probutil.LogAddExp2(t.FocusProb, lnBoost)
	}

	ts.normalize()

	best := ts.order[0]
	bestProb := ts.tasks[best].FocusProb
	for _, id := range ts.order[1:] {
		if p := ts.tasks[id].FocusProb; p > bestProb {
			best, bestProb = id, p
		}
	}
	ts.focus = best
	return ts.focus
}
