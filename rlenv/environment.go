// Package rlenv adapts the chess engine to the generic environment
// contract the self-play loop and DQN agent consume: Reset, Step,
// legal action masking, and terminal detection.
package rlenv

import (
	"fmt"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"github.com/AnthonyKot/chess-rl-sub009/encoding"
	"gonum.org/v1/gonum/mat"
)

// RewardConfig carries the configurable reward schedule. Fields are
// used as given, without validation; a zero field gives a zero reward
// for that event. DefaultRewardConfig gives the documented defaults.
type RewardConfig struct {
	Win              float64
	Loss             float64
	Draw             float64
	StepLimitPenalty float64
}

// DefaultRewardConfig returns the reward schedule's documented defaults.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Win:              1.0,
		Loss:             -1.0,
		Draw:             -0.2,
		StepLimitPenalty: -1.0,
	}
}

// StepResult is the outcome of applying one action to the environment.
type StepResult struct {
	State            *mat.VecDense
	Reward           float64
	Done             bool
	LegalNextActions map[int]bool
	Status           chess.GameStatus
}

// Env drives a single chess game for self-play or evaluation. It is not
// safe for concurrent use; each game worker owns a private Env.
type Env struct {
	board    *chess.Board
	reward   RewardConfig
	maxSteps int
	steps    int
}

// New returns an environment with the given reward schedule and ply
// limit. An episode is terminal once the chess position resolves or
// step count reaches the limit, whichever comes first.
func New(reward RewardConfig, maxSteps int) *Env {
	return &Env{reward: reward, maxSteps: maxSteps}
}

// Reset starts a new game and returns the encoded starting state.
func (e *Env) Reset() *mat.VecDense {
	e.board = chess.NewGame()
	e.steps = 0
	return encoding.EncodeState(e.board)
}

// Board returns the environment's current position, used by the
// self-play worker to attribute terminal rewards per color and by the
// baseline evaluator to play against a non-agent opponent.
func (e *Env) Board() *chess.Board {
	return e.board
}

// LegalActions returns the legal action indices in the current state.
func (e *Env) LegalActions() map[int]bool {
	return encoding.LegalActionIndices(e.board)
}

// IsTerminal reports whether the current state ends the episode.
func (e *Env) IsTerminal() bool {
	return e.board.Status().IsTerminal() || e.steps >= e.maxSteps
}

// Step decodes action, applies it, and returns the resulting state,
// reward, and termination flag. Step fails with an error if action is
// not legal in the current position; the training caller is expected
// to mask actions before calling Step, so this indicates an agent or
// masking bug rather than a recoverable condition.
func (e *Env) Step(action int) (StepResult, error) {
	mv, ok := encoding.DecodeAction(e.board, action)
	if !ok {
		return StepResult{}, fmt.Errorf("step: action %d is not legal in the current position", action)
	}

	mover := e.board.SideToMove
	nb, err := e.board.Apply(mv)
	if err != nil {
		return StepResult{}, fmt.Errorf("step: %w", err)
	}
	e.board = nb
	e.steps++

	status := e.board.Status()
	done := status.IsTerminal()
	stepLimitHit := !done && e.steps >= e.maxSteps

	reward := 0.0
	switch {
	case stepLimitHit:
		reward = e.reward.StepLimitPenalty
		done = true
	case status == chess.WhiteWins:
		reward = e.outcomeReward(mover, chess.White)
	case status == chess.BlackWins:
		reward = e.outcomeReward(mover, chess.Black)
	case done: // any draw status
		reward = e.reward.Draw
	}

	return StepResult{
		State:            encoding.EncodeState(e.board),
		Reward:           reward,
		Done:             done,
		LegalNextActions: encoding.LegalActionIndices(e.board),
		Status:           status,
	}, nil
}

// outcomeReward returns the reward for the side that just moved (mover)
// when the game ended with winner as the winning color: rewards are
// produced from the perspective of the player whose move was just
// taken.
func (e *Env) outcomeReward(mover, winner chess.Color) float64 {
	if mover == winner {
		return e.reward.Win
	}
	return e.reward.Loss
}

// TerminalRewardFor returns the reward color should receive for a game
// that ended with status, from color's own perspective. Used to
// back-attribute the outcome to the side that did NOT make the final
// move, whose last transition otherwise keeps the zero reward Step
// gives to every non-terminal ply.
func TerminalRewardFor(reward RewardConfig, status chess.GameStatus, color chess.Color) float64 {
	switch status {
	case chess.WhiteWins:
		if color == chess.White {
			return reward.Win
		}
		return reward.Loss
	case chess.BlackWins:
		if color == chess.Black {
			return reward.Win
		}
		return reward.Loss
	case chess.DrawStalemate, chess.DrawInsufficientMaterial, chess.DrawFiftyMove, chess.DrawRepetition:
		return reward.Draw
	default: // Ongoing: step-limit truncation, not a real terminal outcome
		return 0
	}
}
