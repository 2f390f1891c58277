package chess

var knightOffsets = [8][2]int8{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [8][2]int8{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var bishopRays = [4][2]int8{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookRays = [4][2]int8{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// LegalMoves returns every pseudo-legal move filtered by king safety:
// castling and en passant included, moves that leave the mover's own
// king in check excluded.
func (b *Board) LegalMoves() []Move {
	pseudo := b.pseudoLegalMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, mv := range pseudo {
		nb := b.tryApplyNoValidate(mv)
		if !nb.InCheck(b.SideToMove) {
			legal = append(legal, mv)
		}
	}
	return legal
}

// tryApplyNoValidate applies mv without the legality re-check Apply
// performs (legality is what the caller is in the middle of computing).
func (b *Board) tryApplyNoValidate(mv Move) *Board {
	nb := b.clone()
	nb.pushHistory(b.Hash)

	mover := b.At(mv.From)
	if b.isEnPassant(mv) {
		capturedSq := Position{Rank: mv.From.Rank, File: mv.To.File}
		nb.Squares[capturedSq.Square()] = Piece{}
	}
	nb.Squares[mv.From.Square()] = Piece{}
	placed := mover
	if mv.Promotion != NoKind {
		placed = Piece{Kind: mv.Promotion, Color: mover.Color}
	}
	nb.Squares[mv.To.Square()] = placed

	if b.isCastle(mv) {
		rank := mv.From.Rank
		if mv.To.File == 6 {
			rookFrom := Position{Rank: rank, File: 7}
			rookTo := Position{Rank: rank, File: 5}
			nb.Squares[rookTo.Square()] = nb.Squares[rookFrom.Square()]
			nb.Squares[rookFrom.Square()] = Piece{}
		} else if mv.To.File == 2 {
			rookFrom := Position{Rank: rank, File: 0}
			rookTo := Position{Rank: rank, File: 3}
			nb.Squares[rookTo.Square()] = nb.Squares[rookFrom.Square()]
			nb.Squares[rookFrom.Square()] = Piece{}
		}
	}
	nb.SideToMove = b.SideToMove.Other()
	return nb
}

// pseudoLegalMoves generates every move obeying per-piece movement
// rules but not yet filtered for king safety.
func (b *Board) pseudoLegalMoves() []Move {
	var moves []Move
	side := b.SideToMove
	for sq := 0; sq < 64; sq++ {
		p := b.Squares[sq]
		if p.IsEmpty() || p.Color != side {
			continue
		}
		from := PositionFromSquare(sq)
		switch p.Kind {
		case Pawn:
			moves = append(moves, b.pawnMoves(from, side)...)
		case Knight:
			moves = append(moves, b.offsetMoves(from, side, knightOffsets[:])...)
		case King:
			moves = append(moves, b.offsetMoves(from, side, kingOffsets[:])...)
			moves = append(moves, b.castleMoves(from, side)...)
		case Bishop:
			moves = append(moves, b.rayMoves(from, side, bishopRays[:])...)
		case Rook:
			moves = append(moves, b.rayMoves(from, side, rookRays[:])...)
		case Queen:
			moves = append(moves, b.rayMoves(from, side, bishopRays[:])...)
			moves = append(moves, b.rayMoves(from, side, rookRays[:])...)
		}
	}
	return moves
}

func (b *Board) offsetMoves(from Position, side Color, offsets [][2]int8) []Move {
	var moves []Move
	for _, o := range offsets {
		to := Position{Rank: from.Rank + o[0], File: from.File + o[1]}
		if !to.Valid() {
			continue
		}
		target := b.At(to)
		if target.IsEmpty() || target.Color != side {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (b *Board) rayMoves(from Position, side Color, rays [][2]int8) []Move {
	var moves []Move
	for _, r := range rays {
		to := Position{Rank: from.Rank + r[0], File: from.File + r[1]}
		for to.Valid() {
			target := b.At(to)
			if target.IsEmpty() {
				moves = append(moves, Move{From: from, To: to})
				to = Position{Rank: to.Rank + r[0], File: to.File + r[1]}
				continue
			}
			if target.Color != side {
				moves = append(moves, Move{From: from, To: to})
			}
			break
		}
	}
	return moves
}

var promotionKinds = []Kind{Queen, Rook, Bishop, Knight}

func (b *Board) pawnMoves(from Position, side Color) []Move {
	var moves []Move
	dir := int8(1)
	startRank := int8(1)
	promoteRank := int8(7)
	if side == Black {
		dir = -1
		startRank = 6
		promoteRank = 0
	}

	addWithPromotion := func(to Position) {
		if to.Rank == promoteRank {
			for _, k := range promotionKinds {
				moves = append(moves, Move{From: from, To: to, Promotion: k})
			}
		} else {
			moves = append(moves, Move{From: from, To: to})
		}
	}

	oneStep := Position{Rank: from.Rank + dir, File: from.File}
	if oneStep.Valid() && b.At(oneStep).IsEmpty() {
		addWithPromotion(oneStep)
		if from.Rank == startRank {
			twoStep := Position{Rank: from.Rank + 2*dir, File: from.File}
			if b.At(twoStep).IsEmpty() {
				moves = append(moves, Move{From: from, To: twoStep})
			}
		}
	}

	for _, df := range []int8{-1, 1} {
		to := Position{Rank: from.Rank + dir, File: from.File + df}
		if !to.Valid() {
			continue
		}
		target := b.At(to)
		if !target.IsEmpty() && target.Color != side {
			addWithPromotion(to)
		} else if target.IsEmpty() && b.EnPassantFile == to.File && from.Rank == startRank+3*dir {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (b *Board) castleMoves(from Position, side Color) []Move {
	var moves []Move
	rank := int8(0)
	kingside, queenside := WhiteKingside, WhiteQueenside
	if side == Black {
		rank = 7
		kingside, queenside = BlackKingside, BlackQueenside
	}
	if from.Rank != rank || from.File != 4 {
		return nil
	}
	opp := side.Other()

	if b.Castling[kingside] &&
		b.At(Position{Rank: rank, File: 5}).IsEmpty() &&
		b.At(Position{Rank: rank, File: 6}).IsEmpty() &&
		!b.attacks(Position{Rank: rank, File: 4}, opp) &&
		!b.attacks(Position{Rank: rank, File: 5}, opp) &&
		!b.attacks(Position{Rank: rank, File: 6}, opp) {
		moves = append(moves, Move{From: from, To: Position{Rank: rank, File: 6}})
	}
	if b.Castling[queenside] &&
		b.At(Position{Rank: rank, File: 3}).IsEmpty() &&
		b.At(Position{Rank: rank, File: 2}).IsEmpty() &&
		b.At(Position{Rank: rank, File: 1}).IsEmpty() &&
		!b.attacks(Position{Rank: rank, File: 4}, opp) &&
		!b.attacks(Position{Rank: rank, File: 3}, opp) &&
		!b.attacks(Position{Rank: rank, File: 2}, opp) {
		moves = append(moves, Move{From: from, To: Position{Rank: rank, File: 2}})
	}
	return moves
}

// attacks reports whether any piece of color by attacks square sq. This
// shares the ray-walking code with move generation but never recurses
// into move generation itself.
func (b *Board) attacks(sq Position, by Color) bool {
	// Pawns
	dir := int8(-1)
	if by == White {
		dir = 1
	}
	for _, df := range []int8{-1, 1} {
		from := Position{Rank: sq.Rank - dir, File: sq.File + df}
		if from.Valid() {
			p := b.At(from)
			if p.Kind == Pawn && p.Color == by {
				return true
			}
		}
	}
	// Knights
	for _, o := range knightOffsets {
		from := Position{Rank: sq.Rank + o[0], File: sq.File + o[1]}
		if from.Valid() {
			p := b.At(from)
			if p.Kind == Knight && p.Color == by {
				return true
			}
		}
	}
	// King
	for _, o := range kingOffsets {
		from := Position{Rank: sq.Rank + o[0], File: sq.File + o[1]}
		if from.Valid() {
			p := b.At(from)
			if p.Kind == King && p.Color == by {
				return true
			}
		}
	}
	// Sliding: bishops/queens on diagonals, rooks/queens on files/ranks
	if b.rayAttacks(sq, by, bishopRays, Bishop) {
		return true
	}
	if b.rayAttacks(sq, by, rookRays, Rook) {
		return true
	}
	return false
}

func (b *Board) rayAttacks(sq Position, by Color, rays [4][2]int8, slider Kind) bool {
	for _, r := range rays {
		to := Position{Rank: sq.Rank + r[0], File: sq.File + r[1]}
		for to.Valid() {
			p := b.At(to)
			if p.IsEmpty() {
				to = Position{Rank: to.Rank + r[0], File: to.File + r[1]}
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}
