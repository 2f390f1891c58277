// Package encoding converts chess.Board positions and chess.Move values
// to and from the fixed-size numeric representations the neural
// network core consumes.
package encoding

import (
	"github.com/AnthonyKot/chess-rl-sub009/chess"
	"gonum.org/v1/gonum/mat"
)

// StateSize is the length of the encoded state vector: 12 board planes
// of 64 squares, plus auxiliary features (side to move, 4 castling
// rights, 8 en-passant file flags, 1 en-passant availability bit, 1
// normalized halfmove clock).
const StateSize = 12*64 + 1 + 4 + 8 + 1 + 1 // = 783

// planeIndex returns the board-plane index (0..11) for a piece: pawns,
// knights, bishops, rooks, queens, kings, white first then black.
func planeIndex(p chess.Piece) int {
	base := int(p.Kind) - 1 // Pawn=1..King=6 -> 0..5
	if p.Color == chess.Black {
		base += 6
	}
	return base
}

// EncodeState flattens board into a StateSize-length feature vector
// suitable as network input. All values lie in [0, 1] or [-1, 1].
func EncodeState(b *chess.Board) *mat.VecDense {
	data := make([]float64, StateSize)

	for sq := 0; sq < 64; sq++ {
		p := b.Squares[sq]
		if p.IsEmpty() {
			continue
		}
		data[planeIndex(p)*64+sq] = 1.0
	}

	offset := 12 * 64
	if b.SideToMove == chess.White {
		data[offset] = 1.0
	}
	offset++

	for i := 0; i < 4; i++ {
		if b.Castling[i] {
			data[offset+i] = 1.0
		}
	}
	offset += 4

	if b.EnPassantFile >= 0 {
		data[offset+int(b.EnPassantFile)] = 1.0
		data[offset+8] = 1.0
	}
	offset += 9

	data[offset] = float64(b.HalfmoveClock) / 100.0
	if data[offset] > 1.0 {
		data[offset] = 1.0
	}

	return mat.NewVecDense(StateSize, data)
}
