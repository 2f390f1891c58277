package rlenv

import (
	"testing"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/encoding"
)

func TestResetReturnsStartingState(t *testing.T) {
	env := New(DefaultRewardConfig(), 80)
	state := env.Reset()
	if state.Len() != encoding.StateSize {
		t.Fatalf("Reset() state length = %d, want %d", state.Len(), encoding.StateSize)
	}
	if env.Board().SideToMove != chess.White {
		t.Fatalf("SideToMove = %v, want White", env.Board().SideToMove)
	}
}

func TestStepRejectsIllegalAction(t *testing.T) {
	env := New(DefaultRewardConfig(), 80)
	env.Reset()
	if _, err := env.Step(0); err == nil {
		t.Fatalf("Step(0) from the starting position = nil error, want an error (a1-a1 is not a legal move)")
	}
}

// TestStepRewardsMoverOnCheckmate drives 1.e4 e5 2.Qh5 Nc6 3.Bc4 Nf6 4.Qxf7#, checking that
// the reward lands on the side that delivered mate (White), since
// rewards are attributed to the mover, not the side to move next.
func TestStepRewardsMoverOnCheckmate(t *testing.T) {
	env := New(DefaultRewardConfig(), 80)
	env.Reset()

	moves := []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7"}
	var result StepResult
	for _, uci := range moves {
		action := mustEncode(t, uci)
		var err error
		result, err = env.Step(action)
		if err != nil {
			t.Fatalf("Step(%s): %v", uci, err)
		}
	}

	if !result.Done {
		t.Fatalf("final Step.Done = false, want true (checkmate)")
	}
	if result.Status != chess.WhiteWins {
		t.Fatalf("final Step.Status = %v, want WhiteWins", result.Status)
	}
	if result.Reward != DefaultRewardConfig().Win {
		t.Fatalf("final Step.Reward = %v, want %v (White delivered mate and was the mover)", result.Reward, DefaultRewardConfig().Win)
	}
}

func TestStepLimitForcesDoneWithPenalty(t *testing.T) {
	cfg := DefaultRewardConfig()
	env := New(cfg, 1)
	env.Reset()

	action := mustEncode(t, "e2e4")
	result, err := env.Step(action)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.Done {
		t.Fatalf("Done = false at step limit 1, want true")
	}
	if result.Status != chess.Ongoing {
		t.Fatalf("Status = %v, want Ongoing (truncated, not a real terminal position)", result.Status)
	}
	if result.Reward != cfg.StepLimitPenalty {
		t.Fatalf("Reward = %v, want StepLimitPenalty %v", result.Reward, cfg.StepLimitPenalty)
	}
}

func TestTerminalRewardForBothColors(t *testing.T) {
	cfg := DefaultRewardConfig()

	cases := []struct {
		status chess.GameStatus
		color  chess.Color
		want   float64
	}{
		{chess.WhiteWins, chess.White, cfg.Win},
		{chess.WhiteWins, chess.Black, cfg.Loss},
		{chess.BlackWins, chess.Black, cfg.Win},
		{chess.BlackWins, chess.White, cfg.Loss},
		{chess.DrawStalemate, chess.White, cfg.Draw},
		{chess.DrawStalemate, chess.Black, cfg.Draw},
		{chess.DrawRepetition, chess.White, cfg.Draw},
		{chess.Ongoing, chess.White, 0},
	}
	for _, tc := range cases {
		got := TerminalRewardFor(cfg, tc.status, tc.color)
		if got != tc.want {
			t.Errorf("TerminalRewardFor(%v, %v) = %v, want %v", tc.status, tc.color, got, tc.want)
		}
	}
}

func mustEncode(t *testing.T, uci string) int {
	t.Helper()
	if len(uci) != 4 {
		t.Fatalf("bad uci move %q", uci)
	}
	from := chess.Position{File: int8(uci[0] - 'a'), Rank: int8(uci[1] - '1')}
	to := chess.Position{File: int8(uci[2] - 'a'), Rank: int8(uci[3] - '1')}
	return chess.Move{From: from, To: to}.Index()
}
