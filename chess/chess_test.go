package chess

import "testing"

func TestPerftInitialPosition(t *testing.T) {
	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	b := NewGame()
	for _, c := range cases {
		got := b.Perft(c.depth)
		if got != c.want {
			t.Errorf("perft(%d) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbqkb1r/pppp1ppp/5n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4",
		"8/8/8/4k3/8/8/4K3/8 w - - 0 1",
	}
	for _, fen := range fens {
		b, err := FromFEN(fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", fen, err)
		}
		got := b.ToFEN()
		b2, err := FromFEN(got)
		if err != nil {
			t.Fatalf("FromFEN(ToFEN(%q)) = %q: %v", fen, got, err)
		}
		if b2.ToFEN() != got {
			t.Errorf("FEN did not round-trip: %q -> %q -> %q", fen, got, b2.ToFEN())
		}
	}
}

func TestInvalidFEN(t *testing.T) {
	invalid := []string{
		"not a fen",
		"8/8/8/8/8/8/8/8 w KQkq - 0 1",   // no kings
		"8/8/8/8/8/8/8/8 x KQkq - 0 1",   // bad side to move
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w ZZZZ - 0 1", // bad castling
	}
	for _, fen := range invalid {
		if _, err := FromFEN(fen); err == nil || !IsInvalidFEN(err) {
			t.Errorf("FromFEN(%q) = %v, want IsInvalidFEN error", fen, err)
		}
	}
}

func TestScholarsMateLine(t *testing.T) {
	// Position after 1.e4 e5 2.Bc4 Nc6 3.Qh5 Nf6??, White to move. Not
	// yet check: the h5-e8 diagonal is blocked by the f7 pawn. White's
	// Qxf7# captures that pawn and delivers mate in one move, since f7
	// is defended by the bishop on c4 and every king escape square is
	// occupied by a black piece or covered by the queen.
	b, err := FromFEN("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if b.InCheck(White) {
		t.Fatalf("expected white not to be in check before Qxf7#")
	}

	var qxf7 Move
	found := false
	for _, mv := range b.LegalMoves() {
		if mv.From == (Position{Rank: 4, File: 7}) && mv.To == (Position{Rank: 6, File: 5}) {
			qxf7 = mv
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Qxf7 to be legal, moves: %+v", b.LegalMoves())
	}
	mated, err := b.Apply(qxf7)
	if err != nil {
		t.Fatalf("Apply(Qxf7): %v", err)
	}
	if status := mated.Status(); status != WhiteWins {
		t.Errorf("status after Qxf7 = %v, want WhiteWins (checkmate)", status)
	}
}

func TestStalemate(t *testing.T) {
	// Black king on a8, boxed in by white king and queen, not in check: stalemate.
	b, err := FromFEN("k7/2Q5/1K6/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if b.InCheck(Black) {
		t.Fatalf("expected black not to be in check")
	}
	if len(b.LegalMoves()) != 0 {
		t.Fatalf("expected no legal moves, got %+v", b.LegalMoves())
	}
	if status := b.Status(); status != DrawStalemate {
		t.Errorf("status = %v, want DrawStalemate", status)
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	b, err := FromFEN("8/8/8/4k3/8/8/4K3/8 w - - 99 60")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	// Any non-pawn, non-capture move pushes the clock to 100.
	var quiet Move
	for _, mv := range b.LegalMoves() {
		quiet = mv
		break
	}
	nb, err := b.Apply(quiet)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if status := nb.Status(); status != DrawFiftyMove {
		t.Errorf("status = %v, want DrawFiftyMove (halfmove clock %d)", status, nb.HalfmoveClock)
	}
}

func TestInsufficientMaterial(t *testing.T) {
	b, err := FromFEN("8/8/8/4k3/8/8/4K3/8 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if status := b.Status(); status != DrawInsufficientMaterial {
		t.Errorf("status = %v, want DrawInsufficientMaterial", status)
	}
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	b := NewGame()
	illegal := Move{From: Position{Rank: 0, File: 0}, To: Position{Rank: 4, File: 4}}
	if _, err := b.Apply(illegal); err == nil || !IsIllegalMove(err) {
		t.Errorf("Apply(illegal) = %v, want IsIllegalMove error", err)
	}
}

func TestEveryLegalMoveApplies(t *testing.T) {
	b := NewGame()
	for _, mv := range b.LegalMoves() {
		nb, err := b.Apply(mv)
		if err != nil {
			t.Fatalf("Apply(%+v): %v", mv, err)
		}
		if nb.InCheck(b.SideToMove) {
			t.Errorf("Apply(%+v) left mover in check", mv)
		}
	}
}
