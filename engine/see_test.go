package engine

import (
	"testing"

	"chess-engine/board"
)

func mustMove(t *testing.T, pos *board.Position, lan string) board.Move {
	from, to, promo, err := board.ParseLAN(lan)
	if err != nil {
		t.Fatalf("ParseLAN(%q): %v", lan, err)
	}
	for _, m := range board.GeneratePseudoLegal(pos, board.GenAll, nil) {
		if m.From() == from && m.To() == to {
			if pt := m.Kind().PromotionType(); pt == board.NoPieceType || pt == promo {
				return m
			}
		}
	}
	t.Fatalf("move %q not found in pseudo-legal list", lan)
	return board.NoMove
}

func TestWinsExchange(t *testing.T) {
	cases := []struct {
		fen       string
		lan       string
		threshold int
		want      bool
	}{
		{"8/1B6/8/8/4Pk2/2n5/8/7K b - - 0 1", "c3e4", 0, true},
		{"8/1B6/8/8/4Pk2/2n5/8/4R2K b - - 0 1", "c3e4", 0, false},
		{"r1bq1rk1/n1p1pp1p/p2p2p1/3P4/PN2n3/3BBN1P/1bP2PP1/R2Q1RK1 b - - 1 13", "b2a1", 0, true},
	}
	for _, c := range cases {
		pos, err := board.NewFromFEN(c.fen)
		if err != nil {
			t.Fatalf("NewFromFEN(%q): %v", c.fen, err)
		}
		m := mustMove(t, pos, c.lan)
		if got := WinsExchange(pos, m, c.threshold); got != c.want {
			t.Errorf("WinsExchange(%q, %q, %d) = %v, want %v", c.fen, c.lan, c.threshold, got, c.want)
		}
	}
}

// TestWinsExchangeMonotone checks the monotonicity property: raising
// the threshold can only turn a true result false, never the reverse.
func TestWinsExchangeMonotone(t *testing.T) {
	pos, err := board.NewFromFEN("r1bq1rk1/n1p1pp1p/p2p2p1/3P4/PN2n3/3BBN1P/1bP2PP1/R2Q1RK1 b - - 1 13")
	if err != nil {
		t.Fatal(err)
	}
	m := mustMove(t, pos, "b2a1")
	prev := true
	for threshold := -2000; threshold <= 2000; threshold += 50 {
		got := WinsExchange(pos, m, threshold)
		if got && !prev {
			t.Fatalf("WinsExchange not monotone at threshold %d", threshold)
		}
		prev = got
	}
}
