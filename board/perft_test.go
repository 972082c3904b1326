package board

import "testing"

func TestPerft(t *testing.T) {
	cases := []struct {
		fen   string
		depth int
		nodes uint64
	}{
		{StartFEN, 5, 4865609},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 6, 11030083},
		{"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1", 5, 15833292},
	}

	for _, c := range cases {
		pos, err := NewFromFEN(c.fen)
		if err != nil {
			t.Fatalf("NewFromFEN(%q): %v", c.fen, err)
		}
		got := Perft(pos, c.depth)
		if got != c.nodes {
			t.Errorf("Perft(%q, %d) = %d, want %d", c.fen, c.depth, got, c.nodes)
		}
	}
}

// TestMakeUnmakeRestoresHash walks every legal move at the root of each
// perft position and checks that making then unmaking it restores the
// exact hash and FEN, since make/unmake must be a perfect inverse pair
// for perft and search to be trustworthy.
func TestMakeUnmakeRestoresHash(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1",
	}
	for _, fen := range fens {
		pos, err := NewFromFEN(fen)
		if err != nil {
			t.Fatalf("NewFromFEN(%q): %v", fen, err)
		}
		beforeHash := pos.Hash()
		beforeFEN := pos.ToFEN()
		for _, m := range LegalMoves(pos, GenAll, nil) {
			pos.MakeMove(m)
			pos.UnmakeMove(m)
			if pos.Hash() != beforeHash {
				t.Errorf("%s: move %s left hash %d, want %d", fen, m, pos.Hash(), beforeHash)
			}
			if pos.ToFEN() != beforeFEN {
				t.Errorf("%s: move %s left FEN %q, want %q", fen, m, pos.ToFEN(), beforeFEN)
			}
		}
	}
}
