package board

import "math/bits"

// maxIrreversibleDepth bounds the position's own state stack. Search depth
// plus the applied move prefix never approaches this; it exists so the
// stack is a plain array, not a growing slice, on the make/unmake hot path.
const maxIrreversibleDepth = 512

// irreversibleState is everything a move cannot reconstruct by itself:
// halfmove clock, castling rights, en-passant file, the captured piece (if
// any) and the partial Zobrist contribution of castling+en-passant.
type irreversibleState struct {
	halfmoveClock int
	castling      CastleRight
	epFile        int8 // 0..7 when epPresent, otherwise meaningless
	epPresent     bool
	captured      Piece
	partialKey    uint64
}

func (s *irreversibleState) recomputePartialKey() {
	var k uint64
	if s.castling&WhiteKingside != 0 {
		k ^= zobristForCastle(WhiteKingside)
	}
	if s.castling&WhiteQueenside != 0 {
		k ^= zobristForCastle(WhiteQueenside)
	}
	if s.castling&BlackKingside != 0 {
		k ^= zobristForCastle(BlackKingside)
	}
	if s.castling&BlackQueenside != 0 {
		k ^= zobristForCastle(BlackQueenside)
	}
	if s.epPresent {
		k ^= zobristForEPFile(int(s.epFile))
	}
	s.partialKey = k
}

// Position is the mutable board state: dual bitboard/array piece
// placement, side to move, fullmove counter, a reversible Zobrist key for
// piece placement and side to move, and a stack of irreversible state
// entries pushed on every make and popped on every unmake.
type Position struct {
	colorBB [2]Bitboard
	typeBB  [7]Bitboard // [1]=Pawn .. [6]=King, [0] unused
	squares [64]Piece

	side      Color
	fullmove  int
	reversible uint64

	stack [maxIrreversibleDepth]irreversibleState
	top   int
}

// Hash returns the full position hash: reversible key XOR the top
// irreversible state's partial key.
func (p *Position) Hash() uint64 { return p.reversible ^ p.stack[p.top].partialKey }

func (p *Position) SideToMove() Color        { return p.side }
func (p *Position) FullMoveNumber() int      { return p.fullmove }
func (p *Position) HalfmoveClock() int       { return p.stack[p.top].halfmoveClock }
func (p *Position) CastleRights() CastleRight { return p.stack[p.top].castling }

func (p *Position) HasCastleRight(r CastleRight) bool { return p.stack[p.top].castling&r != 0 }

func (p *Position) EnPassantSquare() Square {
	st := &p.stack[p.top]
	if !st.epPresent {
		return NoSquare
	}
	rank := 5 // rank index for rank 6 (white to move captures onto rank 6)
	if p.side == Black {
		rank = 2 // rank 3
	}
	return FileRank(int(st.epFile), rank)
}

func (p *Position) PieceAt(s Square) Piece { return p.squares[s] }
func (p *Position) ColorBB(c Color) Bitboard { return p.colorBB[c] }
func (p *Position) TypeBB(t PieceType) Bitboard { return p.typeBB[t] }
func (p *Position) PieceBB(p_ Piece) Bitboard {
	if p_ == NoPiece {
		return 0
	}
	return p.colorBB[p_.Color()] & p.typeBB[p_.Type()]
}
func (p *Position) Occupied() Bitboard { return p.colorBB[White] | p.colorBB[Black] }

func (p *Position) KingSquare(c Color) Square {
	bb := p.colorBB[c] & p.typeBB[King]
	if bb == 0 {
		return NoSquare
	}
	return Square(trailingZeros(bb))
}

func (p *Position) placePiece(pc Piece, sq Square) {
	p.squares[sq] = pc
	mask := SquareMask(sq)
	p.colorBB[pc.Color()] |= mask
	p.typeBB[pc.Type()] |= mask
	p.reversible ^= zobristForPiece(pc, sq)
}

func (p *Position) removePiece(pc Piece, sq Square) {
	p.squares[sq] = NoPiece
	mask := SquareMask(sq)
	p.colorBB[pc.Color()] &^= mask
	p.typeBB[pc.Type()] &^= mask
	p.reversible ^= zobristForPiece(pc, sq)
}

func (p *Position) movePiece(pc Piece, from, to Square) {
	p.removePiece(pc, from)
	p.placePiece(pc, to)
}

func rookStartSquares(c Color) (kingside, queenside Square) {
	if c == White {
		return 7, 0
	}
	return 63, 56
}

func homeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// dropRookRight clears the castling right attached to the rook's home
// square, called both when a rook moves from it and when it is captured on
// it.
func (p *Position) dropRookRight(sq Square, st *irreversibleState) {
	ks := [2]Square{7, 63}
	qs := [2]Square{0, 56}
	if sq == ks[White] {
		st.castling &^= WhiteKingside
	} else if sq == qs[White] {
		st.castling &^= WhiteQueenside
	} else if sq == ks[Black] {
		st.castling &^= BlackKingside
	} else if sq == qs[Black] {
		st.castling &^= BlackQueenside
	}
}

// MakeMove applies a pseudo-legal move. The caller (movegen) is
// responsible for legality filtering via make->test->unmake; MakeMove
// itself performs no legality check.
func (p *Position) MakeMove(m Move) {
	from, to, kind := m.From(), m.To(), m.Kind()
	mover := p.squares[from]
	us := p.side
	them := us.Other()

	p.top++
	cur := &p.stack[p.top]
	prev := &p.stack[p.top-1]
	*cur = *prev
	cur.captured = NoPiece
	cur.epPresent = false

	cur.halfmoveClock++
	if mover.Type() == Pawn {
		cur.halfmoveClock = 0
	}

	switch kind {
	case Quiet:
		p.movePiece(mover, from, to)
		if mover.Type() == King {
			cur.castling &^= kingsideRight(us) | queensideRight(us)
		} else if mover.Type() == Rook {
			p.dropRookRight(from, cur)
		}

	case DoublePawnPush:
		p.movePiece(mover, from, to)
		cur.halfmoveClock = 0
		cur.epPresent = true
		cur.epFile = int8(from.File())

	case KingCastle, QueenCastle:
		p.movePiece(mover, from, to)
		var rookFrom, rookTo Square
		rank := homeRank(us) * 8
		if kind == KingCastle {
			rookFrom, rookTo = Square(rank+7), Square(rank+5)
		} else {
			rookFrom, rookTo = Square(rank+0), Square(rank+3)
		}
		p.movePiece(MakePiece(Rook, us), rookFrom, rookTo)
		cur.castling &^= kingsideRight(us) | queensideRight(us)

	case Capture:
		victim := p.squares[to]
		cur.captured = victim
		cur.halfmoveClock = 0
		p.removePiece(victim, to)
		p.movePiece(mover, from, to)
		if mover.Type() == King {
			cur.castling &^= kingsideRight(us) | queensideRight(us)
		} else if mover.Type() == Rook {
			p.dropRookRight(from, cur)
		}
		if victim.Type() == Rook {
			p.dropRookRight(to, cur)
		}

	case EPCapture:
		cur.halfmoveClock = 0
		capSq := FileRank(to.File(), from.Rank())
		victim := p.squares[capSq]
		cur.captured = victim
		p.removePiece(victim, capSq)
		p.movePiece(mover, from, to)

	default: // promotions, plain or capturing
		pt := kind.PromotionType()
		promoted := MakePiece(pt, us)
		cur.halfmoveClock = 0
		if kind.IsCapture() {
			victim := p.squares[to]
			cur.captured = victim
			p.removePiece(victim, to)
			if victim.Type() == Rook {
				p.dropRookRight(to, cur)
			}
		}
		p.removePiece(mover, from)
		p.placePiece(promoted, to)
	}

	cur.recomputePartialKey()
	p.reversible ^= zobristSide
	p.side = them
	if us == Black {
		p.fullmove++
	}
}

// UnmakeMove reverses the effect of MakeMove(m); m must be the move that
// was just applied.
func (p *Position) UnmakeMove(m Move) {
	them := p.side
	us := them.Other()
	if us == Black {
		p.fullmove--
	}
	p.reversible ^= zobristSide
	p.side = us

	from, to, kind := m.From(), m.To(), m.Kind()
	cur := &p.stack[p.top]

	switch kind {
	case Quiet:
		mover := p.squares[to]
		p.movePiece(mover, to, from)

	case DoublePawnPush:
		mover := p.squares[to]
		p.movePiece(mover, to, from)

	case KingCastle, QueenCastle:
		king := p.squares[to]
		p.movePiece(king, to, from)
		rank := homeRank(us) * 8
		var rookFrom, rookTo Square
		if kind == KingCastle {
			rookFrom, rookTo = Square(rank+7), Square(rank+5)
		} else {
			rookFrom, rookTo = Square(rank+0), Square(rank+3)
		}
		rook := p.squares[rookTo]
		p.movePiece(rook, rookTo, rookFrom)

	case Capture:
		mover := p.squares[to]
		p.movePiece(mover, to, from)
		p.placePiece(cur.captured, to)

	case EPCapture:
		mover := p.squares[to]
		p.movePiece(mover, to, from)
		capSq := FileRank(to.File(), from.Rank())
		p.placePiece(cur.captured, capSq)

	default:
		pt := kind.PromotionType()
		promoted := MakePiece(pt, us)
		p.removePiece(promoted, to)
		p.placePiece(MakePiece(Pawn, us), from)
		if kind.IsCapture() {
			p.placePiece(cur.captured, to)
		}
	}

	p.top--
}

// MakeNullMove pushes state, clears en passant, and flips side to move
// without moving a piece. It must never be called while the side to move
// is in check.
func (p *Position) MakeNullMove() {
	p.top++
	cur := &p.stack[p.top]
	prev := &p.stack[p.top-1]
	*cur = *prev
	cur.epPresent = false
	cur.halfmoveClock++
	cur.recomputePartialKey()

	p.reversible ^= zobristSide
	p.side = p.side.Other()
}

func (p *Position) UnmakeNullMove() {
	p.reversible ^= zobristSide
	p.side = p.side.Other()
	p.top--
}

// Clone returns a deep, independent copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

func trailingZeros(b Bitboard) int {
	return bits.TrailingZeros64(uint64(b))
}
