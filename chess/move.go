package chess

// Move is a single ply: a source and destination square, plus an
// optional promotion kind. Castling is encoded as a two-square king
// move; en passant is encoded as a pawn diagonal move onto the empty
// en-passant square.
type Move struct {
	From      Position
	To        Position
	Promotion Kind // NoKind unless this move promotes a pawn
}

// Index encodes the move into the fixed 4096-slot action index space
// used by encoding.Action: from*64 + to. Promotion kind is not part of
// the index under the queen-only scheme; callers that need to
// disambiguate underpromotion must use a side channel.
func (m Move) Index() int {
	return m.From.Square()*64 + m.To.Square()
}

func (b *Board) isCastle(mv Move) bool {
	p := b.At(mv.From)
	return p.Kind == King && abs(int(mv.To.File)-int(mv.From.File)) == 2
}

func (b *Board) isEnPassant(mv Move) bool {
	p := b.At(mv.From)
	if p.Kind != Pawn || mv.From.File == mv.To.File {
		return false
	}
	return b.At(mv.To).IsEmpty()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Apply returns the board resulting from playing mv, which must be a
// member of LegalMoves(b). Applying a move not in that set is a fatal
// programming error during self-play and is reported as an *Error here
// so callers can choose how to react.
func (b *Board) Apply(mv Move) (*Board, error) {
	legal := b.LegalMoves()
	found := false
	for _, lm := range legal {
		if lm == mv {
			found = true
			break
		}
	}
	if !found {
		return nil, newError("apply", errIllegalMove)
	}

	nb := b.clone()
	nb.pushHistory(b.Hash)

	mover := b.At(mv.From)
	captured := b.At(mv.To)
	isPawnMove := mover.Kind == Pawn
	isCapture := !captured.IsEmpty()

	if b.isEnPassant(mv) {
		capturedSq := Position{Rank: mv.From.Rank, File: mv.To.File}
		nb.Squares[capturedSq.Square()] = Piece{}
		isCapture = true
	}

	nb.Squares[mv.From.Square()] = Piece{}
	placed := mover
	if mv.Promotion != NoKind {
		placed = Piece{Kind: mv.Promotion, Color: mover.Color}
	}
	nb.Squares[mv.To.Square()] = placed

	if b.isCastle(mv) {
		rank := mv.From.Rank
		if mv.To.File == 6 { // kingside
			rookFrom := Position{Rank: rank, File: 7}
			rookTo := Position{Rank: rank, File: 5}
			nb.Squares[rookTo.Square()] = nb.Squares[rookFrom.Square()]
			nb.Squares[rookFrom.Square()] = Piece{}
		} else if mv.To.File == 2 { // queenside
			rookFrom := Position{Rank: rank, File: 0}
			rookTo := Position{Rank: rank, File: 3}
			nb.Squares[rookTo.Square()] = nb.Squares[rookFrom.Square()]
			nb.Squares[rookFrom.Square()] = Piece{}
		}
	}

	nb.updateCastlingRights(mv, mover)

	if isPawnMove && abs(int(mv.To.Rank)-int(mv.From.Rank)) == 2 {
		nb.EnPassantFile = mv.From.File
	} else {
		nb.EnPassantFile = -1
	}

	if isPawnMove || isCapture {
		nb.HalfmoveClock = 0
	} else {
		nb.HalfmoveClock = b.HalfmoveClock + 1
	}

	if b.SideToMove == Black {
		nb.FullmoveNumber = b.FullmoveNumber + 1
	}
	nb.SideToMove = b.SideToMove.Other()
	nb.Hash = nb.computeHash()

	if nb.InCheck(b.SideToMove) {
		// King-safety is already enforced by LegalMoves, so reaching this
		// means movegen has a bug, not that the caller passed a bad move.
		panic("chess: apply produced a board with the mover in check")
	}

	return nb, nil
}

func (nb *Board) updateCastlingRights(mv Move, mover Piece) {
	clear := func(right int) { nb.Castling[right] = false }

	if mover.Kind == King {
		if mover.Color == White {
			clear(WhiteKingside)
			clear(WhiteQueenside)
		} else {
			clear(BlackKingside)
			clear(BlackQueenside)
		}
	}
	affect := func(sq Position) {
		switch sq.Square() {
		case 0:
			clear(WhiteQueenside)
		case 7:
			clear(WhiteKingside)
		case 56:
			clear(BlackQueenside)
		case 63:
			clear(BlackKingside)
		}
	}
	affect(mv.From)
	affect(mv.To)
}
