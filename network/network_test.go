package network

import (
	"math/rand"
	"testing"

	G "gorgonia.org/gorgonia"
)

func TestForwardPassShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := New(8, []int{16, 8}, 4, 2, rng)

	if err := m.SetInput([][]float64{
		{1, 2, 3, 4, 5, 6, 7, 8},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}); err != nil {
		t.Fatalf("SetInput: %v", err)
	}

	vm := G.NewTapeMachine(m.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	rows, err := m.PredictionRows()
	if err != nil {
		t.Fatalf("PredictionRows: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 4 {
		t.Fatalf("PredictionRows shape = %dx%d, want 2x4", len(rows), len(rows[0]))
	}
}

func TestCloneWithBatchPreservesWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := New(4, []int{6}, 3, 1, rng)
	clone := m.CloneWithBatch(5)

	if clone.BatchSize() != 5 {
		t.Fatalf("clone batch size = %d, want 5", clone.BatchSize())
	}
	for i := range m.layers {
		want := m.layers[i].weights.Value().Data().([]float64)
		got := clone.layers[i].weights.Value().Data().([]float64)
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("clone layer %d weight %d = %v, want %v", i, j, got[j], want[j])
			}
		}
	}
	if err := Set(clone, m); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := New(4, []int{6}, 3, 1, rng)
	data, err := src.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := New(4, []int{6}, 3, 1, rand.New(rand.NewSource(99)))
	if err := dst.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}

	mismatched := New(5, []int{6}, 3, 1, rand.New(rand.NewSource(99)))
	if err := mismatched.Load(data); err != ErrIncompatibleCheckpoint {
		t.Fatalf("Load with mismatched architecture = %v, want ErrIncompatibleCheckpoint", err)
	}
}

func TestPolyakBlendsTowardSource(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	src := New(3, nil, 2, 1, rng)
	dst := New(3, nil, 2, 1, rand.New(rand.NewSource(5)))
	before := append([]float64{}, dst.layers[0].weights.Value().Data().([]float64)...)
	if err := Polyak(dst, src, 0.5); err != nil {
		t.Fatalf("Polyak: %v", err)
	}
	s := src.layers[0].weights.Value().Data().([]float64)
	got := dst.layers[0].weights.Value().Data().([]float64)
	for j := range got {
		if want := 0.5*s[j] + (1-0.5)*before[j]; got[j] != want {
			t.Fatalf("blended weight %d = %v, want %v", j, got[j], want)
		}
	}
}
