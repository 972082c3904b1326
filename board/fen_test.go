package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r1bq1rk1/n1p1pp1p/p2p2p1/3P4/PN2n3/3BBN1P/1bP2PP1/R2Q1RK1 b - - 1 13",
		"rnbqkbnr/pppp1ppp/8/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6 0 1",
	}
	for _, fen := range fens {
		pos, err := NewFromFEN(fen)
		if err != nil {
			t.Fatalf("NewFromFEN(%q): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip %q => %q", fen, got)
		}
	}
}

func TestEnPassantCanonicalization(t *testing.T) {
	// No black pawn on d4 or f4 can capture on e3, so the claimed en
	// passant square must be dropped.
	fen := "4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1"
	pos, err := NewFromFEN(fen)
	if err != nil {
		t.Fatalf("NewFromFEN(%q): %v", fen, err)
	}
	if pos.EnPassantSquare() != NoSquare {
		t.Errorf("expected en passant square to be canonicalized away, got %s", pos.EnPassantSquare())
	}
}

func TestParseLANRoundTrip(t *testing.T) {
	pos, err := NewFromFEN(StartFEN)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range LegalMoves(pos, GenAll, nil) {
		from, to, promo, err := ParseLAN(m.String())
		if err != nil {
			t.Fatalf("ParseLAN(%q): %v", m.String(), err)
		}
		if from != m.From() || to != m.To() {
			t.Errorf("ParseLAN(%q) = %s%s, want %s%s", m.String(), from, to, m.From(), m.To())
		}
		if pt := m.Kind().PromotionType(); pt != NoPieceType && pt != promo {
			t.Errorf("ParseLAN(%q) promo = %v, want %v", m.String(), promo, pt)
		}
	}
}
