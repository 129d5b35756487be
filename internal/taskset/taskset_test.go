package taskset

import (
	"math"
	"math/rand"
	"testing"

	"github.com/latticeforge/mnemo/internal/memtype"
)

func sumExp(ts *TaskSet) float64 {
	var sum float64
	for _, t := range ts.tasks {
		sum += math.Exp(t.FocusProb)
	}
	return sum
}

func TestAddTaskKeepsProbabilitiesNormalized(t *testing.T) {
	ts := New(0.01)
	ts.AddTask("T1", "first", []memtype.MemoryId{memtype.NewMemoryId()})
	if s := sumExp(ts); math.Abs(s-1) > 1e-6 {
		t.Fatalf("want sum 1 after first add, got %v", s)
	}
	ts.AddTask("T2", "second", []memtype.MemoryId{memtype.NewMemoryId()})
	if s := sumExp(ts); math.Abs(s-1) > 1e-6 {
		t.Fatalf("want sum 1 after second add, got %v", s)
	}
}

func TestShiftFocusScenario(t *testing.T) {
	ts := New(0.01)
	ts.AddTask("T1", "t1", []memtype.MemoryId{memtype.NewMemoryId()})
	ts.AddTask("T2", "t2", []memtype.MemoryId{memtype.NewMemoryId()})
	ts.focus = "T1"

	got := ts.ShiftFocus([]TaskId{"T2", "T1"})
	if got != "T2" {
		t.Fatalf("want focus to become T2 after shift_focus([T2,T1]) with low inertia, got %v", got)
	}
	if s := sumExp(ts); math.Abs(s-1) > 1e-6 {
		t.Fatalf("want sum 1 after shift_focus, got %v", s)
	}
}

func TestShiftFocusEmptySetReturnsDefault(t *testing.T) {
	ts := New(0.5)
	if got := ts.ShiftFocus([]TaskId{"T1"}); got != DefaultFocus {
		t.Fatalf("want DefaultFocus for an empty task set, got %v", got)
	}
}

func TestShiftFocusNoRelatedTasksReturnsUnchanged(t *testing.T) {
	ts := New(0.5)
	ts.AddTask("T1", "t1", nil)
	ts.focus = "T1"
	if got := ts.ShiftFocus(nil); got != "T1" {
		t.Fatalf("want focus unchanged with no related tasks, got %v", got)
	}
}

func TestShiftFocusZeroInertiaAnnihilates(t *testing.T) {
	ts := New(0)
	ts.AddTask("T1", "t1", nil)
	ts.AddTask("T2", "t2", nil)
	ts.focus = "T1"
	got := ts.ShiftFocus([]TaskId{"T2"})
	if got != "T2" {
		t.Fatalf("want T2 to fully dominate with inertia 0, got %v", got)
	}
	t1, _ := ts.Get("T1")
	if !math.IsInf(t1.FocusProb, -1) && t1.FocusProb > -30 {
		t.Fatalf("want T1's probability annihilated toward -inf, got %v", t1.FocusProb)
	}
}

func TestFocusSampleRespectsBudgetAndMembership(t *testing.T) {
	ts := New(0.3)
	notesA := []memtype.MemoryId{memtype.NewMemoryId(), memtype.NewMemoryId(), memtype.NewMemoryId()}
	notesB := []memtype.MemoryId{memtype.NewMemoryId(), memtype.NewMemoryId()}
	ts.AddTask("A", "a", notesA)
	ts.AddTask("B", "b", notesB)

	rng := rand.New(rand.NewSource(1))
	sample := ts.FocusSample(3, rng)
	if len(sample) > 3 {
		t.Fatalf("sample exceeds window size: %d", len(sample))
	}
	valid := make(map[memtype.MemoryId]struct{})
	for _, m := range append(append([]memtype.MemoryId{}, notesA...), notesB...) {
		valid[m] = struct{}{}
	}
	seen := make(map[memtype.MemoryId]struct{})
	for _, m := range sample {
		if _, ok := valid[m]; !ok {
			t.Fatalf("sampled id %v not in any task's related notes", m)
		}
		if _, dup := seen[m]; dup {
			t.Fatalf("sampled id %v appears twice", m)
		}
		seen[m] = struct{}{}
	}
}

func TestFocusSampleFallbackOnNaN(t *testing.T) {
	ts := New(0.5)
	notes := []memtype.MemoryId{memtype.NewMemoryId(), memtype.NewMemoryId()}
	ts.AddTask("A", "a", notes)
	a, _ := ts.Get("A")
	a.FocusProb = math.NaN()

	rng := rand.New(rand.NewSource(2))
	sample := ts.FocusSample(5, rng)
	if len(sample) != len(notes) {
		t.Fatalf("fallback should sample min(w, |union|) = %d, got %d", len(notes), len(sample))
	}
}
