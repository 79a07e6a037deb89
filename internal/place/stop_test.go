package place

import "testing"

func TestFixedIterationsStopsAtLimit(t *testing.T) {
	f := &FixedIterations{Max: 3}
	for iter := 0; iter < 2; iter++ {
		if f.Stop(&IterState{Iter: iter}) {
			t.Errorf("Stopped early at iteration %d", iter)
		}
	}
	if !f.Stop(&IterState{Iter: 2}) {
		t.Errorf("Did not stop at the final iteration")
	}
}

func TestRelativeImprovementStopsOnPlateau(t *testing.T) {
	r := NewRelativeImprovement(0)

	// Steady improvement keeps it running.
	objs := []float64{100, 90, 81, 73}
	for iter, obj := range objs {
		if r.Stop(&IterState{Iter: iter, Objective: obj}) {
			t.Fatalf("Stopped during steady improvement at iteration %d", iter)
		}
	}
	// Then a plateau: patience is 3, so the third stale check trips.
	for k := 0; k < 2; k++ {
		if r.Stop(&IterState{Iter: 4 + k, Objective: 73}) {
			t.Fatalf("Stopped after only %d stale iterations", k+1)
		}
	}
	if !r.Stop(&IterState{Iter: 6, Objective: 73}) {
		t.Errorf("Did not stop after exhausting patience")
	}
}

func TestRelativeImprovementResetsOnImprovement(t *testing.T) {
	r := NewRelativeImprovement(0)
	r.Stop(&IterState{Iter: 0, Objective: 100})

	// Two stale iterations, then a real improvement resets the counter.
	r.Stop(&IterState{Iter: 1, Objective: 100})
	r.Stop(&IterState{Iter: 2, Objective: 100})
	if r.Stop(&IterState{Iter: 3, Objective: 50}) {
		t.Fatalf("Stopped on an improving iteration")
	}
	for k := 0; k < 2; k++ {
		if r.Stop(&IterState{Iter: 4 + k, Objective: 50}) {
			t.Fatalf("Counter did not reset: stopped after %d stale iterations", k+1)
		}
	}
	if !r.Stop(&IterState{Iter: 6, Objective: 50}) {
		t.Errorf("Did not stop after the reset counter exhausted patience")
	}
}

func TestRelativeImprovementHardCap(t *testing.T) {
	r := NewRelativeImprovement(5)
	// Keep improving so the plateau logic never fires.
	for iter := 0; iter < 4; iter++ {
		if r.Stop(&IterState{Iter: iter, Objective: 100 - float64(iter)*10}) {
			t.Fatalf("Stopped before the hard cap at iteration %d", iter)
		}
	}
	if !r.Stop(&IterState{Iter: 4, Objective: 50}) {
		t.Errorf("Hard cap did not trigger at the iteration limit")
	}
}
