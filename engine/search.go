package engine

import (
	"sync/atomic"
	"time"

	"chess-engine/board"
	"chess-engine/internal/xmath"
)

// pollInterval is the node count between stop-flag/clock checks: small
// enough for tight stop-flag responsiveness without checking on every node.
const pollInterval = 1024

// nullMoveMinDepth/nullMoveReduction, futility and LMP margins are tuned
// to this module's Inf/MateBound score convention.
const (
	nullMoveMinDepth  = 5
	nullMoveReduction = 4
	futilityMargin    = 150
	lmpBaseMoveCount  = 6
)

type nodeType uint8

const (
	nodePV nodeType = iota
	nodeNonPV
)

// triedQuiet/triedCapture record enough about a move tried at a node
// (and, for captures, the piece it captured) to apply the history
// gravity update after the fact without re-deriving piece types from a
// board state that has since moved on to the next move in the loop.
type triedQuiet struct {
	move board.Move
	pt   board.PieceType
}

type triedCapture struct {
	move     board.Move
	attacker board.PieceType
	victim   board.PieceType
}

// Searcher owns everything one search invocation needs: the working
// position, node count, transposition table, history/killer tables, time
// manager and stop flag. One Searcher is used per search: no locking on
// the hot path, single worker per invocation.
type Searcher struct {
	pos     *board.Position
	tt      *Table
	history *HistoryTables
	killers [MaxPly][2]board.Move

	nodes uint64
	stop  *atomic.Bool
	tm    TimeManager

	preSearchHashes []uint64 // repetition history back to the last irreversible move
	searchHashes    [MaxPly]uint64

	callbacks    Callbacks
	rootBestMove board.Move
	aborted      bool
}

func NewSearcher(tt *Table) *Searcher {
	return &Searcher{tt: tt, history: NewHistoryTables()}
}

// Run executes one full iterative-deepening search and invokes the
// request's callbacks; it returns the final best move.
func (s *Searcher) Run(req SearchRequest) (board.Move, error) {
	pos, err := board.NewFromFEN(req.FEN)
	if err != nil {
		return board.NoMove, err
	}
	s.pos = pos
	s.stop = req.Stop
	if s.stop == nil {
		s.stop = &atomic.Bool{}
	}
	s.callbacks = req.Callbacks
	s.nodes = 0
	s.aborted = false

	s.preSearchHashes = s.preSearchHashes[:0]
	s.preSearchHashes = append(s.preSearchHashes, pos.Hash())
	for _, m := range req.MovePrefix {
		pos.MakeMove(m)
		s.preSearchHashes = append(s.preSearchHashes, pos.Hash())
	}

	us := pos.SideToMove()
	remaining, inc := req.WhiteTimeMs, req.WhiteIncMs
	if us == board.Black {
		remaining, inc = req.BlackTimeMs, req.BlackIncMs
	}
	phase := staticPhase(pos)
	s.tm.Start(time.Now(), remaining, inc, req.MovesToGo, phase, req.FixedMoveMs)

	maxDepth := req.MaxDepth
	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	var lastCompletedMove board.Move
	prevScore := 0
	for depth := 1; depth <= maxDepth; depth++ {
		alpha, beta := -Inf, Inf
		if depth >= 4 {
			alpha, beta = prevScore-50, prevScore+50
		}

		var score int
		var move board.Move
		for {
			score, move = s.searchRoot(depth, alpha, beta)
			if s.aborted {
				break
			}
			if score <= alpha {
				alpha = -Inf
				continue
			}
			if score >= beta {
				if s.callbacks.SendInfo != nil {
					info := s.buildInfo(depth, score)
					info.Flags |= InfoLowerbound
					s.callbacks.SendInfo(info)
				}
				beta = Inf
				continue
			}
			break
		}

		if s.aborted && depth > 1 {
			break
		}
		if move != board.NoMove {
			lastCompletedMove = move
			s.rootBestMove = move
		}
		prevScore = score

		if s.callbacks.SendInfo != nil {
			s.callbacks.SendInfo(s.buildInfo(depth, score))
		}
		if req.MaxNodes > 0 && s.nodes >= req.MaxNodes {
			break
		}
		if req.MateDistance > 0 {
			if mateIn := mateDistance(score); mateIn > 0 && mateIn <= req.MateDistance {
				break
			}
		}
		if s.aborted {
			break
		}
	}

	if s.callbacks.SendBestMove != nil {
		s.callbacks.SendBestMove(lastCompletedMove)
	}
	return lastCompletedMove, nil
}

// mateDistance returns the number of moves to deliver (positive) or suffer
// (negative would require the caller to check separately) mate implied by
// score, or 0 if score is not a mate score. Only the side-to-move-wins case
// is reported here, matching MateDistance's "stop once we've found a mate
// within N moves" use.
func mateDistance(score int) int {
	if score > MateBound {
		return (Inf - score + 1) / 2
	}
	return 0
}

func (s *Searcher) buildInfo(depth int, score int) Info {
	elapsed := s.tm.ElapsedMillis(time.Now())
	info := Info{Flags: InfoDepth | InfoNodes | InfoTime, Depth: depth, Nodes: s.nodes, TimeMillis: elapsed}
	if elapsed > 0 {
		info.NPS = s.nodes * 1000 / uint64(elapsed)
		info.Flags |= InfoNPS
	}
	if score > MateBound {
		info.Mate = (Inf - score + 1) / 2
		info.Flags |= InfoMate
	} else if score < -MateBound {
		info.Mate = -(Inf + score + 1) / 2
		info.Flags |= InfoMate
	} else {
		info.CP = score
		info.Flags |= InfoCP
	}
	return info
}

func staticPhase(pos *board.Position) int {
	_, _, wPhase := evalTerms(pos, board.White)
	_, _, bPhase := evalTerms(pos, board.Black)
	return xmath.Clamp(256-((wPhase+bPhase)*256)/totalPhaseWeight, 0, 256)
}

// searchRoot runs one root-level search: it iterates legal moves itself
// (rather than delegating to alphabeta) so it always has a best move to
// report even if depth 1 is aborted mid-iteration.
func (s *Searcher) searchRoot(depth, alpha, beta int) (int, board.Move) {
	us := s.pos.SideToMove()
	ttMove, _ := s.tt.Move(s.pos.Hash())

	picker := NewPicker(s.pos, ttMove, s.history, s.killers[0], board.NoMove, false)
	best := -Inf - 1
	bestMove := board.NoMove
	first := true

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}
		s.searchHashes[0] = s.pos.Hash()
		s.pos.MakeMove(m)
		if board.InCheck(s.pos, us) {
			s.pos.UnmakeMove(m)
			continue
		}
		s.nodes++

		var score int
		if first {
			score = -s.alphabeta(-beta, -alpha, depth-1, 1, nodePV, m)
		} else {
			score = -s.alphabeta(-alpha-1, -alpha, depth-1, 1, nodeNonPV, m)
			if score > alpha && !s.aborted {
				score = -s.alphabeta(-beta, -alpha, depth-1, 1, nodePV, m)
			}
		}
		s.pos.UnmakeMove(m)
		first = false

		if score > best {
			best = score
			bestMove = m
		}
		if s.aborted {
			// Depth 1 still reports whatever partial best move it found
			// so a move is always emitted.
			break
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
		if s.shouldStop() {
			break
		}
	}

	if bestMove == board.NoMove {
		if board.InCheck(s.pos, us) {
			return -Inf, board.NoMove
		}
		return 0, board.NoMove
	}
	return best, bestMove
}

func (s *Searcher) shouldStop() bool {
	if s.stop.Load() {
		s.aborted = true
		return true
	}
	if s.nodes%pollInterval == 0 && s.tm.Expired(time.Now()) {
		s.aborted = true
		return true
	}
	return false
}

// alphabeta is the negamax core. ply is the distance from the
// search root; prevMove is the move that led to this node, used for the
// counter-move heuristic.
func (s *Searcher) alphabeta(alpha, beta, depth, ply int, nt nodeType, prevMove board.Move) int {
	if s.nodes%pollInterval == 0 && s.shouldStop() {
		return 0
	}
	if ply > 0 && s.isRepetition(ply) {
		return 0
	}

	us := s.pos.SideToMove()
	inCheck := board.InCheck(s.pos, us)

	if depth <= 0 {
		if inCheck {
			depth = 1 // a check at the search horizon always gets one more ply
		} else {
			return s.quiescence(alpha, beta, ply)
		}
	}

	hash := s.pos.Hash()
	s.tt.Prefetch(hash)
	if _, ok, score := s.tt.Probe(hash, depth, alpha, beta, ply); ok {
		return score
	}

	staticEval := Evaluate(s.pos)

	if nt == nodeNonPV && !inCheck && ply > 0 {
		if depth <= 6 && staticEval-depth*futilityMargin >= beta && beta < MateBound {
			return staticEval - depth*futilityMargin
		}
		if depth >= nullMoveMinDepth && prevMove != board.NoMove && staticEval >= beta && hasNonPawnMaterial(s.pos, us) {
			s.pos.MakeNullMove()
			s.searchHashes[ply] = s.pos.Hash()
			score := -s.alphabeta(-beta, -beta+1, depth-1-nullMoveReduction, ply+1, nodeNonPV, board.NoMove)
			s.pos.UnmakeNullMove()
			if score >= beta {
				return beta
			}
		}
	}

	ttMove, _ := s.tt.Move(hash)
	killers := s.killers[ply]
	picker := NewPicker(s.pos, ttMove, s.history, killers, prevMove, false)

	best := -Inf - 1
	bestMove := board.NoMove
	bound := BoundUpper
	legalMoves := 0
	var triedQuiets []triedQuiet
	var triedCaptures []triedCapture

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}
		isCapture := m.Kind().IsCapture()

		if nt == nodeNonPV && legalMoves >= 1 && !isCapture && !inCheck {
			if staticEval+depth*futilityMargin <= alpha {
				break
			}
			if depth <= 3 && legalMoves >= lmpBaseMoveCount+depth*3 {
				continue
			}
		}

		moverType := s.pos.PieceAt(m.From()).Type()
		var victimType board.PieceType
		if isCapture {
			if m.Kind() == board.EPCapture {
				victimType = board.Pawn
			} else {
				victimType = s.pos.PieceAt(m.To()).Type()
			}
		}

		s.searchHashes[ply] = s.pos.Hash()
		s.pos.MakeMove(m)
		if board.InCheck(s.pos, us) {
			s.pos.UnmakeMove(m)
			continue
		}
		s.nodes++
		legalMoves++
		if !isCapture {
			triedQuiets = append(triedQuiets, triedQuiet{m, moverType})
		} else {
			triedCaptures = append(triedCaptures, triedCapture{m, moverType, victimType})
		}

		reduction := 0
		if depth >= 3 && legalMoves > 3 && !isCapture && !inCheck && nt == nodeNonPV {
			reduction = 1
			if legalMoves > 8 {
				reduction = 2
			}
		}

		var score int
		if legalMoves == 1 {
			score = -s.alphabeta(-beta, -alpha, depth-1, ply+1, nodePV, m)
		} else {
			score = -s.alphabeta(-alpha-1, -alpha, depth-1-reduction, ply+1, nodeNonPV, m)
			if score > alpha && reduction > 0 {
				score = -s.alphabeta(-alpha-1, -alpha, depth-1, ply+1, nodeNonPV, m)
			}
			if score > alpha && nt == nodePV {
				score = -s.alphabeta(-beta, -alpha, depth-1, ply+1, nodePV, m)
			}
		}
		s.pos.UnmakeMove(m)

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
		}
		if alpha >= beta {
			bound = BoundLower
			delta := int32(depth * futilityMargin)
			if !isCapture {
				s.recordKiller(ply, m)
				for _, tried := range triedQuiets[:len(triedQuiets)-1] {
					s.history.Update(us, tried.pt, tried.move.From(), tried.move.To(), -delta)
				}
				s.history.Update(us, moverType, m.From(), m.To(), delta)
				s.history.RecordCounter(us, prevMove, m)
			} else {
				for _, tried := range triedCaptures[:len(triedCaptures)-1] {
					s.history.UpdateCapture(us, tried.attacker, tried.move.To(), tried.victim, -delta)
				}
				s.history.UpdateCapture(us, moverType, m.To(), victimType, delta)
			}
			break
		}
		if s.aborted {
			break
		}
	}

	if legalMoves == 0 {
		if inCheck {
			return -Inf + ply
		}
		return 0
	}

	if ply > 0 {
		s.tt.Store(hash, depth, ply, bestMove, best, bound)
	}
	return best
}

func (s *Searcher) recordKiller(ply int, m board.Move) {
	if s.killers[ply][0] == m {
		return
	}
	s.killers[ply][1] = s.killers[ply][0]
	s.killers[ply][0] = m
}

// quiescence extends the search along capture sequences to avoid the
// horizon effect.
func (s *Searcher) quiescence(alpha, beta, ply int) int {
	s.nodes++
	us := s.pos.SideToMove()
	inCheck := board.InCheck(s.pos, us)
	standPat := Evaluate(s.pos)

	if !inCheck {
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	hash := s.pos.Hash()
	best := standPat
	bound := BoundUpper

	picker := NewPicker(s.pos, board.NoMove, nil, [2]board.Move{}, board.NoMove, true)
	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}
		s.pos.MakeMove(m)
		if board.InCheck(s.pos, us) {
			s.pos.UnmakeMove(m)
			continue
		}
		score := -s.quiescence(-beta, -alpha, ply+1)
		s.pos.UnmakeMove(m)

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
		}
		if alpha >= beta {
			bound = BoundLower
			break
		}
	}

	s.tt.Store(hash, 0, ply, board.NoMove, best, bound)
	return best
}

func (s *Searcher) isRepetition(ply int) bool {
	hash := s.pos.Hash()
	for p := ply - 2; p >= 0; p -= 2 {
		if s.searchHashes[p] == hash {
			return true
		}
	}
	clock := s.pos.HalfmoveClock()
	n := len(s.preSearchHashes)
	// preSearchHashes[n-1] is the root; entries with the same side to move
	// as this node sit an even distance (n-1-i)+ply away from it.
	start := n - 3
	if ply%2 == 1 {
		start = n - 2
	}
	for i := start; i >= 0 && (n-1-i)+ply <= clock; i -= 2 {
		if s.preSearchHashes[i] == hash {
			return true
		}
	}
	return false
}

func hasNonPawnMaterial(pos *board.Position, c board.Color) bool {
	bb := pos.ColorBB(c) &^ pos.TypeBB(board.Pawn) &^ pos.TypeBB(board.King)
	return bb != 0
}
