// Package eval implements the baseline opponents and the evaluation
// harness: measuring a trained agent's win-rate against fixed,
// non-learning opponents. Grounded on GoLearn's experiment package
// for the "play N episodes, aggregate outcomes" shape, and on the
// pack's standalone chess search files (other_examples' minimax and
// quiescence search, and hailam-chessplay/internal/engine/search.go)
// for negamax/alpha-beta structure, generalized to this repo's chess
// package instead of each source's own board representation.
package eval

import (
	"errors"
	"math/rand"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
)

var errNoMoves = errors.New("eval: no legal moves in terminal position")

// Baseline selects a move for the side to move in b. Implementations
// must not mutate b.
type Baseline interface {
	SelectMove(b *chess.Board, rng *rand.Rand) (chess.Move, error)
	String() string
}

// RandomLegal picks uniformly among legal moves.
type RandomLegal struct{}

func (RandomLegal) String() string { return "random-legal" }

func (RandomLegal) SelectMove(b *chess.Board, rng *rand.Rand) (chess.Move, error) {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return chess.Move{}, errNoMoves
	}
	return legal[rng.Intn(len(legal))], nil
}

// Heuristic is a single-ply minimax (greedy capture-preferring)
// baseline: it scores each legal move by the static material
// evaluation of the position it leads to, one ply deep, with no
// recursion, a cheaper baseline than Minimax. Ties are broken
// uniformly at random with rng, so the baseline isn't biased toward
// whichever move generator order happens to list first.
type Heuristic struct{}

func (Heuristic) String() string { return "heuristic" }

func (Heuristic) SelectMove(b *chess.Board, rng *rand.Rand) (chess.Move, error) {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return chess.Move{}, errNoMoves
	}

	mover := b.SideToMove
	best := legal[:0:0]
	bestScore := minScore
	order := rng.Perm(len(legal))
	for _, i := range order {
		mv := legal[i]
		nb, err := b.Apply(mv)
		if err != nil {
			continue
		}
		score := materialScore(nb, mover)
		switch {
		case score > bestScore:
			bestScore = score
			best = []chess.Move{mv}
		case score == bestScore:
			best = append(best, mv)
		}
	}
	if len(best) == 0 {
		return legal[order[0]], nil
	}
	return best[rng.Intn(len(best))], nil
}

// Minimax plays negamax with alpha-beta pruning to a fixed depth, leaf
// evaluation by material count plus piece-square bonuses.
type Minimax struct {
	Depth int
}

func (m Minimax) String() string { return "minimax" }

func (m Minimax) SelectMove(b *chess.Board, rng *rand.Rand) (chess.Move, error) {
	legal := b.LegalMoves()
	if len(legal) == 0 {
		return chess.Move{}, errNoMoves
	}
	orderMovesCapturesFirst(b, legal)

	mover := b.SideToMove
	depth := m.Depth
	if depth < 1 {
		depth = 1
	}

	best := legal[0]
	bestScore := minScore - 1
	alpha, beta := minScore, maxScore
	for _, mv := range legal {
		nb, err := b.Apply(mv)
		if err != nil {
			continue
		}
		score := -negamax(nb, depth-1, -beta, -alpha, mover.Other())
		if score > bestScore {
			bestScore = score
			best = mv
		}
		if score > alpha {
			alpha = score
		}
	}
	return best, nil
}
