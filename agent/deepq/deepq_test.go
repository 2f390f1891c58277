package deepq

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/AnthonyKot/chess-rl-sub009/optim"
	"github.com/AnthonyKot/chess-rl-sub009/replay"
)

func testConfig() Config {
	return Config{
		Features:              6,
		Hidden:                []int{8},
		Outputs:               4,
		BatchSize:             3,
		Gamma:                 0.99,
		HuberDelta:            1.0,
		DoubleDQN:             true,
		Tau:                   1.0,
		TargetUpdateFrequency: 2,
		Optimizer:             optim.DefaultAdamConfig(0.01),
	}
}

func vec(vals ...float64) *mat.VecDense { return mat.NewVecDense(len(vals), vals) }

func TestSelectActionRespectsLegalMask(t *testing.T) {
	d, err := New(testConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	legal := map[int]bool{1: true, 3: true}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		a, err := d.SelectAction([]float64{1, 0, 0, 0, 0, 0}, legal, 0.5, rng)
		if err != nil {
			t.Fatalf("SelectAction: %v", err)
		}
		if !legal[a] {
			t.Fatalf("SelectAction returned illegal action %d", a)
		}
	}
}

func TestSelectActionNoLegalActions(t *testing.T) {
	d, err := New(testConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.SelectAction([]float64{0, 0, 0, 0, 0, 0}, map[int]bool{}, 0, rand.New(rand.NewSource(3))); !IsNoLegalActions(err) {
		t.Fatalf("SelectAction with no legal actions = %v, want IsNoLegalActions", err)
	}
}

func TestUpdateReducesLossOverManySteps(t *testing.T) {
	cfg := testConfig()
	d, err := New(cfg, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := []replay.Experience{
		{State: vec(1, 0, 0, 0, 0, 0), Action: 0, Reward: 1, NextState: vec(0, 1, 0, 0, 0, 0), Done: true},
		{State: vec(0, 1, 0, 0, 0, 0), Action: 1, Reward: 0, NextState: vec(0, 0, 1, 0, 0, 0), Done: false, LegalNextActions: map[int]bool{0: true, 2: true}},
		{State: vec(0, 0, 1, 0, 0, 0), Action: 2, Reward: -1, NextState: vec(0, 0, 0, 1, 0, 0), Done: true},
	}

	var firstLoss, lastLoss float64
	for i := 0; i < 10; i++ {
		stats, err := d.Update(batch)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if i == 0 {
			firstLoss = stats.Loss
		}
		lastLoss = stats.Loss
	}
	if lastLoss > firstLoss {
		t.Fatalf("loss increased: first=%v last=%v", firstLoss, lastLoss)
	}
}

func TestUpdateRejectsWrongBatchSize(t *testing.T) {
	d, err := New(testConfig(), rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.Update([]replay.Experience{{State: vec(0, 0, 0, 0, 0, 0), NextState: vec(0, 0, 0, 0, 0, 0)}}); err == nil {
		t.Fatalf("Update with wrong batch size = nil error, want error")
	}
}
