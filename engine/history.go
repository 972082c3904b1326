package engine

import (
	"chess-engine/board"
	"chess-engine/internal/xmath"
)

// HistoryTables holds three dense history arrays plus a counter-move
// table. butterfly is [side][from][to], the classic quiet-move history.
// pieceTo is [side][piece-type][to], indexed by the moving piece's type
// rather than its origin square, so it generalizes across the squares a
// given piece type happens to move from. captureHistory is
// [side][piece-type][to][captured-type], scoring a capture by attacker,
// destination and victim rather than by MVV-LVA alone. counter maps the
// opponent's previous move to the quiet move that last refuted it.
type HistoryTables struct {
	butterfly      [2][64][64]int32
	pieceTo        [2][7][64]int32
	captureHistory [2][7][64][7]int32
	counter        [2][64][64]board.Move
}

func NewHistoryTables() *HistoryTables { return &HistoryTables{} }

const historyCap = 16384

// gravity applies the update formula shared by all three tables: delta
// minus the old value scaled by |delta|/16384, capping magnitude at
// historyCap.
func gravity(old, delta int32) int32 {
	return xmath.Clamp(old+delta-old*xmath.Abs(delta)/historyCap, -historyCap, historyCap)
}

// Update adjusts the butterfly and piece-to quiet histories for a single
// move together, since both are written on every quiet history update.
func (h *HistoryTables) Update(side board.Color, pt board.PieceType, from, to board.Square, delta int32) {
	bf := &h.butterfly[side][from][to]
	*bf = gravity(*bf, delta)
	pteTo := &h.pieceTo[side][pt][to]
	*pteTo = gravity(*pteTo, delta)
}

// QuietScore combines the butterfly and piece-to contributions for move
// ordering.
func (h *HistoryTables) QuietScore(side board.Color, pt board.PieceType, from, to board.Square) int32 {
	return h.butterfly[side][from][to] + h.pieceTo[side][pt][to]
}

// UpdateCapture adjusts the capture history for a single capturing move.
func (h *HistoryTables) UpdateCapture(side board.Color, pt board.PieceType, to board.Square, captured board.PieceType, delta int32) {
	ch := &h.captureHistory[side][pt][to][captured]
	*ch = gravity(*ch, delta)
}

func (h *HistoryTables) CaptureScore(side board.Color, pt board.PieceType, to board.Square, captured board.PieceType) int32 {
	return h.captureHistory[side][pt][to][captured]
}

func (h *HistoryTables) RecordCounter(side board.Color, prev board.Move, refutation board.Move) {
	if prev == board.NoMove {
		return
	}
	h.counter[side][prev.From()][prev.To()] = refutation
}

func (h *HistoryTables) CounterMove(side board.Color, prev board.Move) board.Move {
	if prev == board.NoMove {
		return board.NoMove
	}
	return h.counter[side][prev.From()][prev.To()]
}
