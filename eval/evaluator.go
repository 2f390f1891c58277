package eval

import (
	"fmt"
	"math/rand"

	"github.com/AnthonyKot/chess-rl-sub009/agent/deepq"
	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/encoding"
	"github.com/AnthonyKot/chess-rl-sub009/rlenv"
)

// Result is the outcome of an evaluation run: win-rate, draw-rate,
// average game length, all from the agent's point of view.
type Result struct {
	Games         int
	Wins          int
	Draws         int
	Losses        int
	WinRate       float64
	DrawRate      float64
	LossRate      float64
	AverageLength float64
}

// Evaluator plays the current agent (epsilon=0) against a Baseline over
// a fixed number of games, alternating which color the agent plays each
// game so that each pair of games (agent-white, agent-black) for the
// same opening reduces color bias. Every game starts from the standard
// position; no opening book is used.
type Evaluator struct {
	Agent    *deepq.DeepQ
	Baseline Baseline
	Reward   rlenv.RewardConfig
	MaxSteps int
}

// New returns an Evaluator with the given agent, baseline opponent, and
// environment settings.
func New(agent *deepq.DeepQ, baseline Baseline, reward rlenv.RewardConfig, maxSteps int) *Evaluator {
	return &Evaluator{Agent: agent, Baseline: baseline, Reward: reward, MaxSteps: maxSteps}
}

// Run plays games games and returns the aggregated Result. rng seeds
// both the agent's (degenerate, since epsilon=0) action selection and
// the baseline's move choices.
func (e *Evaluator) Run(games int, rng *rand.Rand) (Result, error) {
	result := Result{Games: games}
	var totalPlies int

	for i := 0; i < games; i++ {
		agentColor := chess.White
		if i%2 == 1 {
			agentColor = chess.Black
		}

		outcome, plies, err := e.playOne(agentColor, rng)
		if err != nil {
			return Result{}, fmt.Errorf("eval: run: game %d: %w", i, err)
		}
		totalPlies += plies
		switch outcome {
		case agentWin:
			result.Wins++
		case agentLoss:
			result.Losses++
		default:
			result.Draws++
		}
	}

	if games > 0 {
		result.WinRate = float64(result.Wins) / float64(games)
		result.DrawRate = float64(result.Draws) / float64(games)
		result.LossRate = float64(result.Losses) / float64(games)
		result.AverageLength = float64(totalPlies) / float64(games)
	}
	return result, nil
}

type outcome int

const (
	agentDraw outcome = iota
	agentWin
	agentLoss
)

// playOne drives one game to completion, with the agent playing
// agentColor and the baseline playing the other side.
func (e *Evaluator) playOne(agentColor chess.Color, rng *rand.Rand) (outcome, int, error) {
	env := rlenv.New(e.Reward, e.MaxSteps)
	state := env.Reset()

	plies := 0
	for {
		board := env.Board()
		var status chess.GameStatus
		if board.SideToMove == agentColor {
			legal := env.LegalActions()
			action, err := e.Agent.SelectAction(state.RawVector().Data, legal, 0, rng)
			if err != nil {
				return agentDraw, plies, err
			}
			result, err := env.Step(action)
			if err != nil {
				return agentDraw, plies, err
			}
			state = result.State
			status = result.Status
			plies++
			if result.Done {
				return outcomeFor(status, agentColor), plies, nil
			}
		} else {
			mv, err := e.Baseline.SelectMove(board, rng)
			if err != nil {
				return agentDraw, plies, err
			}
			action := encoding.EncodeMove(mv)
			result, err := env.Step(action)
			if err != nil {
				return agentDraw, plies, err
			}
			state = result.State
			status = result.Status
			plies++
			if result.Done {
				return outcomeFor(status, agentColor), plies, nil
			}
		}
	}
}

// outcomeFor classifies a terminal status from the agent's point of
// view. A step-limit truncation (status still Ongoing when the
// environment forced Done) counts as a draw, matching the self-play
// loop's own bucketing of truncated games.
func outcomeFor(status chess.GameStatus, agentColor chess.Color) outcome {
	switch status {
	case chess.WhiteWins:
		if agentColor == chess.White {
			return agentWin
		}
		return agentLoss
	case chess.BlackWins:
		if agentColor == chess.Black {
			return agentWin
		}
		return agentLoss
	default:
		return agentDraw
	}
}
