package encoding

import (
	"testing"

	"github.com/AnthonyKot/chess-rl-sub009/chess"
)

func TestEncodeStateShapeAndRange(t *testing.T) {
	b := chess.NewGame()
	s := EncodeState(b)
	if s.Len() != StateSize {
		t.Fatalf("EncodeState length = %d, want %d", s.Len(), StateSize)
	}
	for i := 0; i < s.Len(); i++ {
		v := s.AtVec(i)
		if v < -1.0 || v > 1.0 {
			t.Errorf("value at %d = %v, out of [-1,1]", i, v)
		}
	}
	// Side to move plane (offset 768) should be 1.0 for white.
	if got := s.AtVec(768); got != 1.0 {
		t.Errorf("side-to-move feature = %v, want 1.0", got)
	}
}

func TestActionRoundTripEveryLegalMove(t *testing.T) {
	boards := []*chess.Board{chess.NewGame()}
	b := boards[0]
	for _, mv := range b.LegalMoves() {
		nb, err := b.Apply(mv)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		boards = append(boards, nb)
	}

	for _, board := range boards {
		legalIdx := LegalActionIndices(board)
		for _, mv := range board.LegalMoves() {
			if mv.Promotion != chess.NoKind && mv.Promotion != chess.Queen {
				continue
			}
			idx := EncodeMove(mv)
			if !legalIdx[idx] {
				t.Errorf("EncodeMove(%+v) = %d not in LegalActionIndices", mv, idx)
			}
			decoded, ok := DecodeAction(board, idx)
			if !ok {
				t.Fatalf("DecodeAction(%d) not ok for move %+v", idx, mv)
			}
			if decoded != mv {
				t.Errorf("DecodeAction(EncodeMove(%+v)) = %+v", mv, decoded)
			}
		}
	}
}
