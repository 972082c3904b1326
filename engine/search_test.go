package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"chess-engine/board"
)

func runSearch(t *testing.T, req SearchRequest) (board.Move, []Info) {
	t.Helper()
	var infos []Info
	var best board.Move
	done := make(chan struct{})
	req.Callbacks = Callbacks{
		SendInfo:     func(i Info) { infos = append(infos, i) },
		SendBestMove: func(m board.Move) { best = m; close(done) },
	}
	tt := NewTable(1)
	s := NewSearcher(tt)
	go func() {
		if _, err := s.Run(req); err != nil {
			t.Error(err)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("search did not report a bestmove in time")
	}
	return best, infos
}

func TestMateInOne(t *testing.T) {
	req := SearchRequest{
		FEN:         "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		MaxDepth:    3,
		FixedMoveMs: 5000,
	}
	best, infos := runSearch(t, req)
	if best.String() != "a1a8" {
		t.Errorf("best move = %s, want a1a8", best)
	}
	found := false
	for _, info := range infos {
		if info.Flags&InfoMate != 0 && info.Mate == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("no info line reported mate in 1; infos = %+v", infos)
	}
}

func TestMoveTimeReturnsPromptly(t *testing.T) {
	req := SearchRequest{
		FEN:         board.StartFEN,
		FixedMoveMs: 100,
	}
	start := time.Now()
	best, infos := runSearch(t, req)
	elapsed := time.Since(start)
	if elapsed > 150*time.Millisecond {
		t.Errorf("search took %s, want <= 150ms", elapsed)
	}
	if best == board.NoMove {
		t.Error("expected a legal move, got none")
	}
	if len(infos) == 0 {
		t.Error("expected at least one info line")
	}
}

func TestStopFlagInterruptsSearch(t *testing.T) {
	stop := &atomic.Bool{}
	req := SearchRequest{
		FEN:         board.StartFEN,
		MaxDepth:    64,
		WhiteTimeMs: 60000,
		Stop:        stop,
	}
	done := make(chan board.Move, 1)
	tt := NewTable(1)
	s := NewSearcher(tt)
	req.Callbacks.SendBestMove = func(m board.Move) { done <- m }
	go func() {
		if _, err := s.Run(req); err != nil {
			t.Error(err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	stop.Store(true)

	select {
	case m := <-done:
		if m == board.NoMove {
			t.Error("expected a legal move after stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not unwind after stop flag was set")
	}
}

func TestRepetitionScoresZero(t *testing.T) {
	prefix := []board.Move{}
	pos, err := board.NewFromFEN(board.StartFEN)
	if err != nil {
		t.Fatal(err)
	}
	for _, lan := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m := mustMove(t, pos, lan)
		prefix = append(prefix, m)
		pos.MakeMove(m)
	}

	req := SearchRequest{
		FEN:         board.StartFEN,
		MovePrefix:  prefix,
		MaxDepth:    4,
		FixedMoveMs: 5000,
	}
	var finalScore int
	var haveScore bool
	req.Callbacks = Callbacks{
		SendInfo: func(i Info) {
			if i.Flags&InfoCP != 0 {
				finalScore = i.CP
				haveScore = true
			}
		},
	}
	tt := NewTable(1)
	s := NewSearcher(tt)
	done := make(chan struct{})
	req.Callbacks.SendBestMove = func(board.Move) { close(done) }
	go func() {
		if _, err := s.Run(req); err != nil {
			t.Error(err)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("search did not finish")
	}
	if !haveScore {
		t.Fatal("no centipawn info line received")
	}
	if finalScore != 0 {
		t.Errorf("score = %d, want 0 (repetition)", finalScore)
	}
}
