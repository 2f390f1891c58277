package chess

// GameStatus enumerates the terminal/non-terminal states of a position.
type GameStatus int

const (
	Ongoing GameStatus = iota
	WhiteWins
	BlackWins
	DrawStalemate
	DrawInsufficientMaterial
	DrawFiftyMove
	DrawRepetition
)

func (s GameStatus) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case WhiteWins:
		return "white_wins"
	case BlackWins:
		return "black_wins"
	case DrawStalemate:
		return "draw_stalemate"
	case DrawInsufficientMaterial:
		return "draw_insufficient_material"
	case DrawFiftyMove:
		return "draw_fifty_move"
	case DrawRepetition:
		return "draw_repetition"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s denotes a finished game.
func (s GameStatus) IsTerminal() bool {
	return s != Ongoing
}

// Status evaluates the game-ending conditions in a fixed order:
// checkmate, stalemate, fifty-move rule, threefold repetition,
// insufficient material, otherwise ongoing.
func (b *Board) Status() GameStatus {
	legal := b.LegalMoves()
	inCheck := b.InCheck(b.SideToMove)

	if len(legal) == 0 {
		if inCheck {
			if b.SideToMove == White {
				return BlackWins
			}
			return WhiteWins
		}
		return DrawStalemate
	}

	if b.HalfmoveClock >= 100 {
		return DrawFiftyMove
	}

	if b.isRepetition() {
		return DrawRepetition
	}

	if b.hasInsufficientMaterial() {
		return DrawInsufficientMaterial
	}

	return Ongoing
}

// isRepetition reports whether the current position's hash has occurred
// twice before in History, making the current occurrence the third
// (threefold repetition).
func (b *Board) isRepetition() bool {
	count := 1
	for _, h := range b.History {
		if h == b.Hash {
			count++
		}
	}
	return count >= 3
}

func (b *Board) hasInsufficientMaterial() bool {
	type tally struct {
		knights, lightBishops, darkBishops int
		other                              bool
	}
	var t [2]tally
	for sq := 0; sq < 64; sq++ {
		p := b.Squares[sq]
		if p.IsEmpty() || p.Kind == King {
			continue
		}
		switch p.Kind {
		case Knight:
			t[p.Color].knights++
		case Bishop:
			if squareIsLight(sq) {
				t[p.Color].lightBishops++
			} else {
				t[p.Color].darkBishops++
			}
		default:
			t[p.Color].other = true
		}
	}
	minorCount := func(c Color) int {
		return t[c].knights + t[c].lightBishops + t[c].darkBishops
	}
	if t[White].other || t[Black].other {
		return false
	}
	// KvK
	if minorCount(White) == 0 && minorCount(Black) == 0 {
		return true
	}
	// KvKN or KvKB (single minor vs bare king, either side)
	if (minorCount(White) == 1 && minorCount(Black) == 0) ||
		(minorCount(White) == 0 && minorCount(Black) == 1) {
		return true
	}
	// KBvKB with same-colored bishops and no other minors
	if t[White].knights == 0 && t[Black].knights == 0 {
		whiteBishops := t[White].lightBishops + t[White].darkBishops
		blackBishops := t[Black].lightBishops + t[Black].darkBishops
		if whiteBishops == 1 && blackBishops == 1 {
			sameColor := (t[White].lightBishops == 1) == (t[Black].lightBishops == 1)
			if sameColor {
				return true
			}
		}
	}
	return false
}

func squareIsLight(sq int) bool {
	rank, file := sq/8, sq%8
	return (rank+file)%2 == 1
}
