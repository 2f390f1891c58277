package eval

import (
	"sort"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
)

const (
	minScore = -1 << 20
	maxScore = 1 << 20
)

// pieceValue is the standard material scale (P=1, N=B=3, R=5, Q=9,
// K=0) in centipawns, so that the piece-square bonuses below can be
// added as integers. The chess package has no piece-value table of its
// own.
func pieceValue(k chess.Kind) int {
	switch k {
	case chess.Pawn:
		return 100
	case chess.Knight, chess.Bishop:
		return 300
	case chess.Rook:
		return 500
	case chess.Queen:
		return 900
	default:
		return 0
	}
}

// pawnTable is a standard centre-favoring piece-square bonus, applied
// from white's point of view and mirrored for black. Only pawns and
// knights get a table; the other pieces are scored by material alone,
// which is sufficient for a fixed-depth baseline opponent rather than
// a serious engine.
var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

func squareBonus(k chess.Kind, sq int, c chess.Color) int {
	table := (*[64]int)(nil)
	switch k {
	case chess.Pawn:
		table = &pawnTable
	case chess.Knight:
		table = &knightTable
	default:
		return 0
	}
	if c == chess.Black {
		sq = 63 - sq
	}
	return table[sq]
}

// materialScore evaluates b from perspective's point of view: positive
// favors perspective, negative favors its opponent.
func materialScore(b *chess.Board, perspective chess.Color) int {
	score := 0
	for sq := 0; sq < 64; sq++ {
		p := b.Squares[sq]
		if p.IsEmpty() {
			continue
		}
		v := pieceValue(p.Kind) + squareBonus(p.Kind, sq, p.Color)
		if p.Color == perspective {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// negamax searches depth plies from b's position, returning a score
// from side's point of view. Grounded on the retrieval pack's minimax and
// negamax search shapes (other_examples' game-ai-search files and
// hailam-chessplay/internal/engine/search.go): negate-and-swap rather
// than separate max/min branches, with alpha-beta pruning and
// captures-first move ordering.
func negamax(b *chess.Board, depth int, alpha, beta int, side chess.Color) int {
	status := b.Status()
	if status.IsTerminal() {
		return terminalScore(status, side)
	}
	if depth == 0 {
		return materialScore(b, side)
	}

	legal := b.LegalMoves()
	orderMovesCapturesFirst(b, legal)

	best := minScore - 1
	for _, mv := range legal {
		nb, err := b.Apply(mv)
		if err != nil {
			continue
		}
		score := -negamax(nb, depth-1, -beta, -alpha, side.Other())
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

func terminalScore(status chess.GameStatus, side chess.Color) int {
	switch status {
	case chess.WhiteWins:
		if side == chess.White {
			return maxScore
		}
		return minScore
	case chess.BlackWins:
		if side == chess.Black {
			return maxScore
		}
		return minScore
	default: // any draw
		return 0
	}
}

// orderMovesCapturesFirst sorts legal in place so captures are searched
// before quiet moves, the cheapest move-ordering heuristic in the
// pack's minimax-based bots (captures tend to produce the largest
// alpha-beta cutoffs first). Captures are further ordered by the
// captured piece's value, most valuable first.
func orderMovesCapturesFirst(b *chess.Board, legal []chess.Move) {
	victim := func(mv chess.Move) int {
		target := b.At(mv.To)
		if target.IsEmpty() {
			return -1
		}
		return pieceValue(target.Kind)
	}
	sort.SliceStable(legal, func(i, j int) bool {
		return victim(legal[i]) > victim(legal[j])
	})
}
