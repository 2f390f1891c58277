package chess

import "math/rand"

// Zobrist keys are generated once at package init from a fixed seed so
// that hashes are stable across runs. Repetition detection keys on
// piece placement, side to move, castling rights, and en-passant
// file, not on Board identity.
var (
	zobristPieces [64][2][7]uint64 // [square][color][kind]
	zobristSide   uint64
	zobristCastle [4]uint64
	zobristEPFile [8]uint64
)

func init() {
	rng := rand.New(rand.NewSource(0xC0FFEE))
	for sq := 0; sq < 64; sq++ {
		for c := 0; c < 2; c++ {
			for k := 1; k <= 6; k++ {
				zobristPieces[sq][c][k] = rng.Uint64()
			}
		}
	}
	zobristSide = rng.Uint64()
	for i := range zobristCastle {
		zobristCastle[i] = rng.Uint64()
	}
	for i := range zobristEPFile {
		zobristEPFile[i] = rng.Uint64()
	}
}

// computeHash recomputes the Zobrist hash of b from scratch. Self-play
// games are short (bounded by maxStepsPerGame), so incremental updates
// are not required for performance; recomputation keeps Apply simple
// and unconditionally correct.
func (b *Board) computeHash() uint64 {
	var h uint64
	for sq := 0; sq < 64; sq++ {
		p := b.Squares[sq]
		if p.IsEmpty() {
			continue
		}
		h ^= zobristPieces[sq][p.Color][p.Kind]
	}
	if b.SideToMove == Black {
		h ^= zobristSide
	}
	for i, set := range b.Castling {
		if set {
			h ^= zobristCastle[i]
		}
	}
	if b.EnPassantFile >= 0 {
		h ^= zobristEPFile[b.EnPassantFile]
	}
	return h
}
