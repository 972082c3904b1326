package engine

import (
	"sync/atomic"

	"chess-engine/board"
)

// InfoFlag marks which fields of Info are valid, since mate/cp are
// mutually exclusive and lowerbound only makes sense alongside one of
// them.
type InfoFlag uint8

const (
	InfoDepth InfoFlag = 1 << iota
	InfoNodes
	InfoNPS
	InfoMate
	InfoTime
	InfoCP
	InfoLowerbound
)

// Info is one periodic progress report, sent after each completed
// iterative-deepening iteration and, flagged InfoLowerbound, when an
// aspiration search fails high before its re-search.
type Info struct {
	Flags      InfoFlag
	Depth      int
	Nodes      uint64
	NPS        uint64
	TimeMillis int64
	CP         int
	Mate       int
}

// Callbacks is the contract the external I/O adapter provides: periodic
// progress and the final move. The cancellation flag the adapter can set
// at any time is SearchRequest.Stop. The core never writes to stdout
// directly.
type Callbacks struct {
	SendInfo     func(Info)
	SendBestMove func(board.Move)
}

// SearchRequest bundles everything one search invocation needs: the
// starting position, an optional move prefix to reach the true root,
// resource limits, and the callback/cancellation contract.
type SearchRequest struct {
	FEN        string
	MovePrefix []board.Move

	MaxDepth     int
	MaxNodes     uint64
	WhiteTimeMs  int64
	BlackTimeMs  int64
	WhiteIncMs   int64
	BlackIncMs   int64
	MovesToGo    int
	FixedMoveMs  int64
	MateDistance int

	Callbacks Callbacks
	Stop      *atomic.Bool
}
