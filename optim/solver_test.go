package optim

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func tensorFrom(data []float64) *tensor.Dense {
	return tensor.New(tensor.WithShape(len(data)), tensor.WithBacking(data))
}

func TestSGDStepReducesLoss(t *testing.T) {
	g := G.NewGraph()
	w := G.NewVector(g, G.Float64, G.WithShape(2), G.WithName("w"), G.WithValue(tensorFrom([]float64{1, 1})))
	target := G.NewConstant(tensorFrom([]float64{0, 0}))
	diff := G.Must(G.Sub(w, target))
	loss := G.Must(G.Sum(G.Must(G.Square(diff))))
	if _, err := G.Grad(loss, w); err != nil {
		t.Fatalf("Grad: %v", err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(w))
	defer vm.Close()

	cfg := Config{Type: SGD, LearnRate: 0.1, MaxGradNorm: -1}
	solver, err := cfg.Create(G.Nodes{w})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var firstLoss, lastLoss float64
	for i := 0; i < 5; i++ {
		vm.Reset()
		if err := vm.RunAll(); err != nil {
			t.Fatalf("RunAll: %v", err)
		}
		if i == 0 {
			firstLoss = loss.Value().Data().(float64)
		}
		if _, err := solver.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		lastLoss = loss.Value().Data().(float64)
	}
	if lastLoss >= firstLoss {
		t.Fatalf("loss did not decrease: first=%v last=%v", firstLoss, lastLoss)
	}
}

func TestAdamCreatesPerParamState(t *testing.T) {
	g := G.NewGraph()
	w := G.NewVector(g, G.Float64, G.WithShape(3), G.WithName("w"), G.WithValue(tensorFrom([]float64{1, 2, 3})))
	cfg := DefaultAdamConfig(0.01)
	solver, err := cfg.Create(G.Nodes{w})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(solver.m) != 1 || len(solver.m[0]) != 3 {
		t.Fatalf("Adam moment state shape = %v, want one slice of length 3", solver.m)
	}
}

func TestStateIsFinite(t *testing.T) {
	st := State{M: [][]float64{{1, 2}}, V: [][]float64{{3, 4}}}
	if !st.IsFinite() {
		t.Fatalf("IsFinite() = false, want true for an all-finite state")
	}
	st.M[0][1] = math.NaN()
	if st.IsFinite() {
		t.Fatalf("IsFinite() = true, want false once a NaN is present")
	}
}

func TestRecoverFromInstabilityHalvesLearnRateAndRollsBack(t *testing.T) {
	solver := &Solver{
		config: Config{Type: Adam, LearnRate: 0.1},
		m:      [][]float64{{1, 2}},
		v:      [][]float64{{3, 4}},
		T:      5,
	}
	snapshot := solver.State()

	// Simulate a Step in progress that corrupted state before detecting
	// the instability.
	solver.T = 6
	solver.m[0][0] = math.NaN()

	if _, err := solver.recoverFromInstability(snapshot); !IsNumericalInstability(err) {
		t.Fatalf("recoverFromInstability error = %v, want IsNumericalInstability", err)
	} else if IsInstabilityUnrecoverable(err) {
		t.Fatalf("recoverFromInstability error = %v, want recoverable, not unrecoverable", err)
	}

	if solver.config.LearnRate != 0.05 {
		t.Fatalf("LearnRate = %v, want halved to 0.05", solver.config.LearnRate)
	}
	if solver.T != 5 {
		t.Fatalf("T = %d, want rolled back to snapshot's 5", solver.T)
	}
	if math.IsNaN(solver.m[0][0]) {
		t.Fatalf("m[0][0] still NaN, want rolled back to snapshot's 1")
	}
}

func TestRecoverFromInstabilityHaltsAtLearnRateFloor(t *testing.T) {
	solver := &Solver{
		config: Config{Type: Adam, LearnRate: minLearnRate},
		m:      [][]float64{{1}},
		v:      [][]float64{{1}},
	}
	snapshot := solver.State()

	_, err := solver.recoverFromInstability(snapshot)
	if !IsInstabilityUnrecoverable(err) {
		t.Fatalf("recoverFromInstability at the learn-rate floor = %v, want IsInstabilityUnrecoverable", err)
	}
	if solver.config.LearnRate != minLearnRate {
		t.Fatalf("LearnRate = %v, want unchanged at the floor %v", solver.config.LearnRate, minLearnRate)
	}
}
