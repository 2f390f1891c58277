package eval

import (
	"math/rand"
	"testing"

	"github.com/AnthonyKot/chess-rl-sub009/agent/deepq"
	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/encoding"
	"github.com/AnthonyKot/chess-rl-sub009/optim"
	"github.com/AnthonyKot/chess-rl-sub009/rlenv"
)

func TestRandomLegalAlwaysReturnsLegalMove(t *testing.T) {
	b := chess.NewGame()
	rng := rand.New(rand.NewSource(1))
	mv, err := RandomLegal{}.SelectMove(b, rng)
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	found := false
	for _, legal := range b.LegalMoves() {
		if legal == mv {
			found = true
		}
	}
	if !found {
		t.Fatalf("SelectMove returned %+v, not in LegalMoves", mv)
	}
}

func TestHeuristicPrefersCapture(t *testing.T) {
	// White pawn on e5 can capture a black knight on d6 or push to e6.
	b, err := chess.FromFEN("4k3/8/3n4/4P3/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	mv, err := Heuristic{}.SelectMove(b, rng)
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	wantCapture := chess.Move{From: chess.Position{Rank: 4, File: 4}, To: chess.Position{Rank: 5, File: 3}}
	if mv != wantCapture {
		t.Errorf("Heuristic.SelectMove = %+v, want the capture %+v", mv, wantCapture)
	}
}

func TestMinimaxAvoidsHangingQueen(t *testing.T) {
	// White's queen on d1 is attacked by the rook on d8; a black bishop
	// on e7 guards d8, so capturing the rook loses the queen for a
	// rook two plies later. Depth-2 minimax should retreat the queen
	// instead of taking the bait.
	b, err := chess.FromFEN("3r1k2/4b3/8/8/8/8/8/3Q1K2 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	mv, err := Minimax{Depth: 2}.SelectMove(b, rng)
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	if mv.To == (chess.Position{Rank: 7, File: 3}) {
		t.Errorf("Minimax walked the queen to d8 where it is captured: %+v", mv)
	}
}

func TestEvaluatorRunAggregatesOutcomes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := deepq.Config{
		Features:              encoding.StateSize,
		Hidden:                []int{8},
		Outputs:               encoding.ActionSpaceSize,
		BatchSize:             4,
		Gamma:                 0.99,
		HuberDelta:            1.0,
		TargetUpdateFrequency: 100,
		Tau:                   1.0,
		Optimizer:             optim.DefaultAdamConfig(1e-3),
	}
	agent, err := deepq.New(cfg, rng)
	if err != nil {
		t.Fatalf("deepq.New: %v", err)
	}

	evaluator := New(agent, RandomLegal{}, rlenv.DefaultRewardConfig(), 20)
	result, err := evaluator.Run(4, rng)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Games != 4 {
		t.Errorf("Games = %d, want 4", result.Games)
	}
	if result.Wins+result.Draws+result.Losses != 4 {
		t.Errorf("outcome counts do not sum to Games: %+v", result)
	}
	sum := result.WinRate + result.DrawRate + result.LossRate
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("rates do not sum to 1: %v", sum)
	}
}
