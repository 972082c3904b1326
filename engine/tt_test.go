package engine

import (
	"testing"

	"chess-engine/board"
)

func TestTableStoreProbeExact(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0xdeadbeefcafef00d)
	m := board.NewMove(board.Square(12), board.Square(28), board.Quiet)

	tt.Store(hash, 6, 0, m, 123, BoundExact)
	entry, ok, score := tt.Probe(hash, 4, -Inf, Inf, 0)
	if !ok {
		t.Fatal("expected probe hit")
	}
	if score != 123 {
		t.Errorf("score = %d, want 123", score)
	}
	if entry.Move != m {
		t.Errorf("move = %v, want %v", entry.Move, m)
	}
}

func TestTableProbeRejectsShallowerDepth(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0x1234)
	tt.Store(hash, 2, 0, board.NoMove, 0, BoundExact)
	if _, ok, _ := tt.Probe(hash, 5, -Inf, Inf, 0); ok {
		t.Error("expected probe miss: stored depth is shallower than requested")
	}
}

func TestTableMateScoreIsPlyAdjusted(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0x5555)
	// A root-relative mate score stored at ply 3 is shifted by +3 to a
	// distance from the storing node, then by -1 when probed at ply 1.
	tt.Store(hash, 1, 3, board.NoMove, Inf-2, BoundExact)
	_, ok, score := tt.Probe(hash, 1, -Inf, Inf, 1)
	if !ok {
		t.Fatal("expected probe hit")
	}
	if want := (Inf - 2) + 3 - 1; score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
}

func TestTableResizeDropsEntries(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0x9999)
	tt.Store(hash, 1, 0, board.NoMove, 10, BoundExact)
	tt.Resize(2)
	if _, ok, _ := tt.Probe(hash, 1, -Inf, Inf, 0); ok {
		t.Error("expected resize to discard prior entries")
	}
}

func TestHistoryGravityUpdateCaps(t *testing.T) {
	h := NewHistoryTables()
	for i := 0; i < 1000; i++ {
		h.Update(board.White, board.Knight, board.Square(8), board.Square(16), 150*6*6)
	}
	score := h.butterfly[board.White][8][16]
	if score > historyCap || score < -historyCap {
		t.Errorf("history score %d exceeds cap %d", score, historyCap)
	}
}
