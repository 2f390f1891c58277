package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var pieceLetters = map[rune]Piece{
	'P': {Kind: Pawn, Color: White}, 'N': {Kind: Knight, Color: White},
	'B': {Kind: Bishop, Color: White}, 'R': {Kind: Rook, Color: White},
	'Q': {Kind: Queen, Color: White}, 'K': {Kind: King, Color: White},
	'p': {Kind: Pawn, Color: Black}, 'n': {Kind: Knight, Color: Black},
	'b': {Kind: Bishop, Color: Black}, 'r': {Kind: Rook, Color: Black},
	'q': {Kind: Queen, Color: Black}, 'k': {Kind: King, Color: Black},
}

var pieceRunes = map[Piece]rune{}

func init() {
	for r, p := range pieceLetters {
		pieceRunes[p] = r
	}
}

// FromFEN parses a standard six-field FEN string. It fails with
// IsInvalidFEN(err) == true on a syntactic or semantic error (missing
// kings, impossible castling flags, wrong field count), naming the
// offending field.
func FromFEN(fen string) (*Board, error) {
	const op = "fromfen"
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, newError(op, fmt.Errorf("%w: want 6 space-separated fields, have %d", errInvalidFEN, len(fields)))
	}

	b := &Board{EnPassantFile: -1}
	if err := parsePlacement(b, fields[0]); err != nil {
		return nil, newError(op, err)
	}

	switch fields[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return nil, newError(op, fmt.Errorf("%w: bad side-to-move field %q", errInvalidFEN, fields[1]))
	}

	if err := parseCastling(b, fields[2]); err != nil {
		return nil, newError(op, err)
	}

	if fields[3] != "-" {
		if len(fields[3]) != 2 || fields[3][0] < 'a' || fields[3][0] > 'h' {
			return nil, newError(op, fmt.Errorf("%w: bad en-passant field %q", errInvalidFEN, fields[3]))
		}
		b.EnPassantFile = int8(fields[3][0] - 'a')
	}

	hmc, err := strconv.Atoi(fields[4])
	if err != nil || hmc < 0 {
		return nil, newError(op, fmt.Errorf("%w: bad halfmove clock field %q", errInvalidFEN, fields[4]))
	}
	b.HalfmoveClock = hmc

	fmn, err := strconv.Atoi(fields[5])
	if err != nil || fmn < 1 {
		return nil, newError(op, fmt.Errorf("%w: bad fullmove number field %q", errInvalidFEN, fields[5]))
	}
	b.FullmoveNumber = fmn

	if _, ok := b.KingSquare(White); !ok {
		return nil, newError(op, fmt.Errorf("%w: no white king", errInvalidFEN))
	}
	if _, ok := b.KingSquare(Black); !ok {
		return nil, newError(op, fmt.Errorf("%w: no black king", errInvalidFEN))
	}
	if b.InCheck(b.SideToMove.Other()) {
		return nil, newError(op, fmt.Errorf("%w: side not to move is in check", errInvalidFEN))
	}

	b.Hash = b.computeHash()
	b.History = make([]uint64, 0, historyCapacity)
	return b, nil
}

func parsePlacement(b *Board, field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: piece placement needs 8 ranks, have %d", errInvalidFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := int8(7 - i) // FEN lists rank 8 first
		file := int8(0)
		for _, r := range rankStr {
			if r >= '1' && r <= '8' {
				file += int8(r - '0')
				continue
			}
			piece, ok := pieceLetters[r]
			if !ok {
				return fmt.Errorf("%w: bad piece letter %q", errInvalidFEN, string(r))
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows 8 files", errInvalidFEN, 8-i)
			}
			b.Squares[(Position{Rank: rank, File: file}).Square()] = piece
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d does not sum to 8 files", errInvalidFEN, 8-i)
		}
	}
	return nil
}

func parseCastling(b *Board, field string) error {
	if field == "-" {
		return nil
	}
	for _, r := range field {
		switch r {
		case 'K':
			b.Castling[WhiteKingside] = true
		case 'Q':
			b.Castling[WhiteQueenside] = true
		case 'k':
			b.Castling[BlackKingside] = true
		case 'q':
			b.Castling[BlackQueenside] = true
		default:
			return fmt.Errorf("%w: bad castling field %q", errInvalidFEN, field)
		}
	}
	for right, set := range b.Castling {
		if !set {
			continue
		}
		color, rank := White, 0
		if right == BlackKingside || right == BlackQueenside {
			color, rank = Black, 7
		}
		rookFile := 7
		if right == WhiteQueenside || right == BlackQueenside {
			rookFile = 0
		}
		if b.Squares[rank*8+4] != (Piece{Kind: King, Color: color}) || b.Squares[rank*8+rookFile] != (Piece{Kind: Rook, Color: color}) {
			return fmt.Errorf("%w: castling field %q grants a right without king and rook on their home squares", errInvalidFEN, field)
		}
	}
	return nil
}

// ToFEN exports the board to its canonical FEN representation. For any
// legal board produced by FromFEN or Apply, FromFEN(ToFEN(b)) round-trips
// to an equivalent board.
func (b *Board) ToFEN() string {
	var sb strings.Builder
	for rank := int8(7); rank >= 0; rank-- {
		empty := 0
		for file := int8(0); file < 8; file++ {
			p := b.Squares[(Position{Rank: rank, File: file}).Square()]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteRune(pieceRunes[p])
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	castling := ""
	if b.Castling[WhiteKingside] {
		castling += "K"
	}
	if b.Castling[WhiteQueenside] {
		castling += "Q"
	}
	if b.Castling[BlackKingside] {
		castling += "k"
	}
	if b.Castling[BlackQueenside] {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	sb.WriteByte(' ')
	if b.EnPassantFile < 0 {
		sb.WriteByte('-')
	} else {
		epRank := "6"
		if b.SideToMove == Black {
			epRank = "3"
		}
		sb.WriteByte('a' + byte(b.EnPassantFile))
		sb.WriteString(epRank)
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.FullmoveNumber))

	return sb.String()
}
