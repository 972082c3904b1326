package engine

import "chess-engine/board"

type pickerStage uint8

const (
	stageTTMove pickerStage = iota
	stageGenCaptures
	stageGoodCaptures
	stageGenQuiets
	stageQuiets
	stageBadCaptures
	stageDone
)

type scoredMove struct {
	move  board.Move
	score int32
}

// Picker is a single-pass, staged move iterator: TT move,
// then good captures (MVV-LVA + PST delta, SEE-gated), then quiets
// (history/killer scored), then bad captures, minimizing generation and
// sort work when a cutoff happens early.
type Picker struct {
	pos      *board.Position
	ttMove   board.Move
	stage    pickerStage
	history  *HistoryTables
	killers  [2]board.Move
	prevMove board.Move

	captures    []scoredMove
	quiets      []scoredMove
	badCaptures []scoredMove
	cursor      int

	capturesOnly bool
}

func NewPicker(pos *board.Position, ttMove board.Move, h *HistoryTables, killers [2]board.Move, prevMove board.Move, capturesOnly bool) *Picker {
	return &Picker{pos: pos, ttMove: ttMove, history: h, killers: killers, prevMove: prevMove, capturesOnly: capturesOnly}
}

// Next returns the next move in stage order, or NoMove when exhausted.
func (p *Picker) Next() board.Move {
	for {
		switch p.stage {
		case stageTTMove:
			p.stage = stageGenCaptures
			if p.ttMove != board.NoMove {
				return p.ttMove
			}

		case stageGenCaptures:
			p.genCaptures()
			p.stage = stageGoodCaptures
			p.cursor = 0

		case stageGoodCaptures:
			for p.cursor < len(p.captures) {
				m := p.selectBest(p.captures, p.cursor)
				p.cursor++
				if m.move == p.ttMove {
					continue
				}
				ownValue := seeValue[p.pos.PieceAt(m.move.From()).Type()]
				if WinsExchange(p.pos, m.move, -ownValue/8) {
					return m.move
				}
				p.badCaptures = append(p.badCaptures, m)
			}
			if p.capturesOnly {
				p.stage = stageDone
			} else {
				p.stage = stageGenQuiets
			}

		case stageGenQuiets:
			p.genQuiets()
			p.stage = stageQuiets
			p.cursor = 0

		case stageQuiets:
			for p.cursor < len(p.quiets) {
				m := p.selectBest(p.quiets, p.cursor)
				p.cursor++
				if m.move == p.ttMove {
					continue
				}
				return m.move
			}
			p.stage = stageBadCaptures
			p.cursor = 0

		case stageBadCaptures:
			if p.cursor < len(p.badCaptures) {
				m := p.badCaptures[p.cursor]
				p.cursor++
				return m.move
			}
			p.stage = stageDone

		case stageDone:
			return board.NoMove
		}
	}
}

// selectBest performs one step of insertion/selection sort: it finds the
// highest-scoring move at or after idx, swaps it into place, and returns
// it. Doing this lazily instead of sorting the whole slice up front means
// a beta cutoff after a handful of captures skips sorting the rest.
func (p *Picker) selectBest(list []scoredMove, idx int) scoredMove {
	best := idx
	for i := idx + 1; i < len(list); i++ {
		if list[i].score > list[best].score {
			best = i
		}
	}
	list[idx], list[best] = list[best], list[idx]
	return list[idx]
}

func (p *Picker) genCaptures() {
	var list board.MoveList
	list = board.GeneratePseudoLegal(p.pos, board.GenCaptures, list)
	p.captures = make([]scoredMove, len(list))
	us := p.pos.SideToMove()
	for i, m := range list {
		score := mvvLvaScore(p.pos, m)
		if p.history != nil {
			attacker := p.pos.PieceAt(m.From()).Type()
			victim := p.pos.PieceAt(m.To()).Type()
			if m.Kind() == board.EPCapture {
				victim = board.Pawn
			}
			score += p.history.CaptureScore(us, attacker, m.To(), victim)
		}
		p.captures[i] = scoredMove{move: m, score: score}
	}
}

func (p *Picker) genQuiets() {
	var list board.MoveList
	list = board.GeneratePseudoLegal(p.pos, board.GenQuiets, list)
	p.quiets = make([]scoredMove, len(list))
	us := p.pos.SideToMove()
	var counter board.Move
	if p.history != nil {
		counter = p.history.CounterMove(us, p.prevMove)
	}
	for i, m := range list {
		score := int32(0)
		if m == p.killers[0] {
			score = killerScore + 1
		} else if m == p.killers[1] {
			score = killerScore
		} else {
			if p.history != nil {
				score = p.history.QuietScore(us, p.pos.PieceAt(m.From()).Type(), m.From(), m.To())
			}
			if m == counter {
				score += counterMoveScore
			}
		}
		p.quiets[i] = scoredMove{move: m, score: score}
	}
}

const killerScore = 1 << 20
const counterMoveScore = 1 << 16

var mvvLvaVictim = [7]int32{
	board.NoPieceType: 0, board.Pawn: 100, board.Knight: 300, board.Bishop: 300,
	board.Rook: 500, board.Queen: 900, board.King: 10000,
}

// mvvLvaScore scores a capture by most-valuable-victim, least-valuable-
// attacker, with a small piece-square delta so captures that also
// improve placement sort ahead of otherwise-equal trades.
func mvvLvaScore(pos *board.Position, m board.Move) int32 {
	victim := pos.PieceAt(m.To())
	if m.Kind() == board.EPCapture {
		victim = board.MakePiece(board.Pawn, pos.SideToMove().Other())
	}
	attacker := pos.PieceAt(m.From())
	score := mvvLvaVictim[victim.Type()]*8 - mvvLvaVictim[attacker.Type()]

	us := pos.SideToMove()
	fromIdx, toIdx := flipSquare(m.From(), us), flipSquare(m.To(), us)
	pt := attacker.Type()
	score += int32(pieceSquareMG[pt][toIdx] - pieceSquareMG[pt][fromIdx])
	return score
}
