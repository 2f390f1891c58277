package encoding

import "github.com/AnthonyKot/chess-rl-sub009/chess"

// ActionSpaceSize is the fixed action index space, 64x64 from/to
// squares, under a queen-only promotion scheme: promotions are always
// to a queen, so a single index per from/to pair is enough and the
// action space stays the minimal 4096.
const ActionSpaceSize = 64 * 64

// EncodeMove returns mv's action index. Defined in terms of
// chess.Move.Index so the encoding stays the single source of truth
// for the from*64+to scheme.
func EncodeMove(mv chess.Move) int {
	return mv.Index()
}

// DecodeAction turns an action index back into a Move legal on b, or
// ok=false if the index names no legal move in this position (the
// index may be structurally valid but not legal here; callers are
// expected to have already masked against LegalActionIndices).
// Promotions are resolved to a queen per the fixed scheme; under the
// queen-only scheme a pawn move to the last rank is unambiguous since
// chess.Board.LegalMoves never offers a non-queen promotion as a
// distinct index.
func DecodeAction(b *chess.Board, action int) (chess.Move, bool) {
	for _, mv := range b.LegalMoves() {
		if mv.Index() != action {
			continue
		}
		if mv.Promotion != chess.NoKind && mv.Promotion != chess.Queen {
			continue // queen-only scheme: skip under-promotion duplicates
		}
		return mv, true
	}
	return chess.Move{}, false
}

// LegalActionIndices returns the set of action indices legal in b,
// used to mask Q-values before action selection and in target
// computation.
func LegalActionIndices(b *chess.Board) map[int]bool {
	legal := b.LegalMoves()
	set := make(map[int]bool, len(legal))
	for _, mv := range legal {
		if mv.Promotion != chess.NoKind && mv.Promotion != chess.Queen {
			continue
		}
		set[mv.Index()] = true
	}
	return set
}
