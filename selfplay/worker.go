package selfplay

import (
	"math/rand"

	G "gorgonia.org/gorgonia"

	"github.com/AnthonyKot/chess-rl-sub009/agent/deepq"
	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/network"
	"github.com/AnthonyKot/chess-rl-sub009/replay"
	"github.com/AnthonyKot/chess-rl-sub009/rlenv"
)

// gameResult is one completed self-play game's experiences plus
// bookkeeping for the cycle's Metrics.
type gameResult struct {
	experiences []replay.Experience
	status      chess.GameStatus
	plies       int
}

// worker plays games sequentially against a single frozen network
// snapshot. It is not safe for concurrent use: the self-play loop runs
// one worker per goroutine, each with its own net/vm, so network
// weights stay mutable only during the training phase, since a cycle's
// snapshot is a deep copy taken before the game phase begins.
type worker struct {
	net *network.MLP
	vm  G.VM
	cfg Config
	rng *rand.Rand
}

func newWorker(net *network.MLP, cfg Config, rng *rand.Rand) *worker {
	return &worker{net: net, vm: G.NewTapeMachine(net.Graph()), cfg: cfg, rng: rng}
}

// playGame runs one self-play game to completion (or the step limit)
// under epsilon-greedy action selection, returning every transition
// generated.
func (w *worker) playGame(epsilon float64) gameResult {
	env := rlenv.New(w.cfg.Reward, w.cfg.MaxStepsPerGame)
	state := env.Reset()

	var exps []replay.Experience
	var movers []chess.Color
	plies := 0
	for {
		legal := env.LegalActions()
		mover := env.Board().SideToMove
		action, err := deepq.SelectFrom(w.net, w.vm, state.RawVector().Data, legal, epsilon, w.rng)
		if err != nil {
			panic("selfplay: worker: " + err.Error())
		}

		result, err := env.Step(action)
		if err != nil {
			panic("selfplay: worker: " + err.Error())
		}

		exps = append(exps, replay.Experience{
			State:            state,
			Action:           action,
			Reward:           result.Reward,
			NextState:        result.State,
			Done:             result.Done,
			LegalNextActions: result.LegalNextActions,
		})
		movers = append(movers, mover)

		state = result.State
		plies++
		if result.Done {
			attributeTerminalRewards(exps, movers, w.cfg.Reward, result.Status)
			return gameResult{experiences: exps, status: result.Status, plies: plies}
		}
	}
}

// attributeTerminalRewards back-fills the game's outcome reward onto
// the last transition of each color, not just the side whose move
// ended the game. Env.Step only ever rewards the mover of the final
// ply, so the other color's last transition would otherwise keep the
// zero reward every non-terminal step gets, even though the game was
// just as decisive a win/loss/draw for it.
func attributeTerminalRewards(exps []replay.Experience, movers []chess.Color, reward rlenv.RewardConfig, status chess.GameStatus) {
	if status == chess.Ongoing {
		return // step-limit truncation, not a real terminal outcome
	}
	lastIndex := map[chess.Color]int{chess.White: -1, chess.Black: -1}
	for i, c := range movers {
		lastIndex[c] = i
	}
	for _, color := range []chess.Color{chess.White, chess.Black} {
		if i := lastIndex[color]; i >= 0 {
			exps[i].Reward = rlenv.TerminalRewardFor(reward, status, color)
		}
	}
}
