package selfplay

import (
	"testing"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/replay"
	"github.com/AnthonyKot/chess-rl-sub009/rlenv"
)

// threePlyExperiences builds White, Black, White transitions the way
// playGame would (mover order White/Black/White), each with reward 0
// except the last, matching what Env.Step produces before terminal
// back-attribution runs.
func threePlyExperiences(lastReward float64) ([]replay.Experience, []chess.Color) {
	exps := []replay.Experience{
		{Reward: 0},
		{Reward: 0},
		{Reward: lastReward},
	}
	movers := []chess.Color{chess.White, chess.Black, chess.White}
	return exps, movers
}

func TestAttributeTerminalRewardsBothColorsOnWin(t *testing.T) {
	cfg := rlenv.DefaultRewardConfig()
	exps, movers := threePlyExperiences(cfg.Win)

	attributeTerminalRewards(exps, movers, cfg, chess.WhiteWins)

	if exps[2].Reward != cfg.Win {
		t.Fatalf("White's (mover) last transition reward = %v, want Win %v", exps[2].Reward, cfg.Win)
	}
	if exps[1].Reward != cfg.Loss {
		t.Fatalf("Black's last transition reward = %v, want Loss %v (back-attributed)", exps[1].Reward, cfg.Loss)
	}
	if exps[0].Reward != 0 {
		t.Fatalf("White's non-final transition reward = %v, want 0 (untouched)", exps[0].Reward)
	}
}

func TestAttributeTerminalRewardsBothColorsOnDraw(t *testing.T) {
	cfg := rlenv.DefaultRewardConfig()
	exps, movers := threePlyExperiences(cfg.Draw)

	attributeTerminalRewards(exps, movers, cfg, chess.DrawStalemate)

	if exps[2].Reward != cfg.Draw {
		t.Fatalf("White's last transition reward = %v, want Draw %v", exps[2].Reward, cfg.Draw)
	}
	if exps[1].Reward != cfg.Draw {
		t.Fatalf("Black's last transition reward = %v, want Draw %v (back-attributed)", exps[1].Reward, cfg.Draw)
	}
}

func TestAttributeTerminalRewardsSkipsStepLimitTruncation(t *testing.T) {
	cfg := rlenv.DefaultRewardConfig()
	exps, movers := threePlyExperiences(cfg.StepLimitPenalty)

	attributeTerminalRewards(exps, movers, cfg, chess.Ongoing)

	if exps[2].Reward != cfg.StepLimitPenalty {
		t.Fatalf("truncated game's last reward = %v, want untouched StepLimitPenalty %v", exps[2].Reward, cfg.StepLimitPenalty)
	}
	if exps[1].Reward != 0 {
		t.Fatalf("truncated game's non-final-mover reward = %v, want untouched 0", exps[1].Reward)
	}
}
