package chess

// Perft counts the number of legal move sequences of the given depth
// from b, the standard chess engine correctness check (depth 1/2/3
// from the initial position must be 20/400/8902).
func (b *Board) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, mv := range b.LegalMoves() {
		nb, err := b.Apply(mv)
		if err != nil {
			panic("chess: perft: legal move rejected by Apply: " + err.Error())
		}
		nodes += nb.Perft(depth - 1)
	}
	return nodes
}
