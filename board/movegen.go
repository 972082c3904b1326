package board

// MoveList is an append-only buffer of pseudo-legal or legal moves. The
// generators append to whatever list they are given, so a caller may pass
// a reused MoveList[:0] or nil.
type MoveList []Move

// GenKind selects which family of moves a generation call should produce.
type GenKind uint8

const (
	GenCaptures GenKind = iota
	GenQuiets
	GenAll
)

// GeneratePseudoLegal appends every pseudo-legal move of kind gen for the
// side to move into list and returns the extended slice. No king-safety
// filtering is performed here — see LegalMoves.
func GeneratePseudoLegal(p *Position, gen GenKind, list MoveList) MoveList {
	us := p.side
	them := us.Other()
	own := p.colorBB[us]
	enemy := p.colorBB[them]
	occ := own | enemy
	empty := ^occ

	list = genPawnMoves(p, us, gen, list)

	for _, pt := range [4]PieceType{Knight, Bishop, Rook, Queen} {
		bb := p.colorBB[us] & p.typeBB[pt]
		for bb != 0 {
			from := popLSB(&bb)
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = KnightAttacksFrom(from)
			case Bishop:
				attacks = BishopAttacks(from, occ)
			case Rook:
				attacks = RookAttacks(from, occ)
			case Queen:
				attacks = QueenAttacks(from, occ)
			}
			attacks &^= own
			list = appendTargets(list, from, attacks, enemy, empty, gen)
		}
	}

	kingSq := p.KingSquare(us)
	kingAttacksBB := KingAttacksFrom(kingSq) &^ own
	list = appendTargets(list, kingSq, kingAttacksBB, enemy, empty, gen)

	if gen == GenQuiets || gen == GenAll {
		list = genCastling(p, us, occ, list)
	}
	return list
}

func appendTargets(list MoveList, from Square, attacks, enemy, empty Bitboard, gen GenKind) MoveList {
	if gen == GenCaptures || gen == GenAll {
		caps := attacks & enemy
		for caps != 0 {
			to := popLSB(&caps)
			list = append(list, NewMove(from, to, Capture))
		}
	}
	if gen == GenQuiets || gen == GenAll {
		quiets := attacks & empty
		for quiets != 0 {
			to := popLSB(&quiets)
			list = append(list, NewMove(from, to, Quiet))
		}
	}
	return list
}

func genPawnMoves(p *Position, us Color, gen GenKind, list MoveList) MoveList {
	them := us.Other()
	occ := p.colorBB[White] | p.colorBB[Black]
	enemy := p.colorBB[them]
	empty := ^occ
	pawns := p.colorBB[us] & p.typeBB[Pawn]

	forward := 8
	startRank, beforeLastRank := 1, 6
	if us == Black {
		forward = -8
		startRank, beforeLastRank = 6, 1
	}

	if gen == GenQuiets || gen == GenAll {
		bb := pawns
		for bb != 0 {
			from := popLSB(&bb)
			to := Square(int(from) + forward)
			if to < 0 || to > 63 || occ&SquareMask(to) != 0 {
				continue
			}
			if to.Rank() == 0 || to.Rank() == 7 {
				list = appendPromotions(list, from, to, false)
				continue
			}
			list = append(list, NewMove(from, to, Quiet))
			if from.Rank() == startRank {
				to2 := Square(int(to) + forward)
				if empty&SquareMask(to2) != 0 {
					list = append(list, NewMove(from, to2, DoublePawnPush))
				}
			}
		}
	}

	if gen == GenCaptures || gen == GenAll {
		bb := pawns
		for bb != 0 {
			from := popLSB(&bb)
			atk := PawnAttacksFrom(from, us) & enemy
			for atk != 0 {
				to := popLSB(&atk)
				if from.Rank() == beforeLastRank {
					list = appendPromotions(list, from, to, true)
				} else {
					list = append(list, NewMove(from, to, Capture))
				}
			}
			if ep := p.EnPassantSquare(); ep != NoSquare {
				if PawnAttacksFrom(from, us)&SquareMask(ep) != 0 {
					list = append(list, NewMove(from, ep, EPCapture))
				}
			}
		}
	}
	return list
}

func appendPromotions(list MoveList, from, to Square, capture bool) MoveList {
	for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		list = append(list, NewMove(from, to, promoKind(capture, pt)))
	}
	return list
}

func genCastling(p *Position, us Color, occ Bitboard, list MoveList) MoveList {
	them := us.Other()
	rank := homeRank(us) * 8
	kingFrom := Square(rank + 4)
	if p.KingSquare(us) != kingFrom {
		return list
	}
	if IsSquareAttacked(p, kingFrom, them) {
		return list
	}

	if p.HasCastleRight(kingsideRight(us)) {
		f1, g1 := Square(rank+5), Square(rank+6)
		if occ&(SquareMask(f1)|SquareMask(g1)) == 0 &&
			!IsSquareAttacked(p, f1, them) && !IsSquareAttacked(p, g1, them) {
			list = append(list, NewMove(kingFrom, g1, KingCastle))
		}
	}
	if p.HasCastleRight(queensideRight(us)) {
		b1, c1, d1 := Square(rank+1), Square(rank+2), Square(rank+3)
		if occ&(SquareMask(b1)|SquareMask(c1)|SquareMask(d1)) == 0 &&
			!IsSquareAttacked(p, d1, them) && !IsSquareAttacked(p, c1, them) {
			list = append(list, NewMove(kingFrom, c1, QueenCastle))
		}
	}
	return list
}

// AttackersOf returns the bitboard of pieces of either color attacking sq,
// given occupancy occ. Used by SEE and by the castling legality check.
func AttackersOf(p *Position, sq Square, occ Bitboard) Bitboard {
	var attackers Bitboard
	attackers |= KnightAttacksFrom(sq) & p.typeBB[Knight]
	attackers |= KingAttacksFrom(sq) & p.typeBB[King]
	attackers |= RookAttacks(sq, occ) & (p.typeBB[Rook] | p.typeBB[Queen])
	attackers |= BishopAttacks(sq, occ) & (p.typeBB[Bishop] | p.typeBB[Queen])
	attackers |= PawnAttacksFrom(sq, White) & p.colorBB[Black] & p.typeBB[Pawn]
	attackers |= PawnAttacksFrom(sq, Black) & p.colorBB[White] & p.typeBB[Pawn]
	return attackers & occ
}

func IsSquareAttacked(p *Position, sq Square, by Color) bool {
	occ := p.Occupied()
	return AttackersOf(p, sq, occ)&p.colorBB[by] != 0
}

func InCheck(p *Position, c Color) bool {
	return IsSquareAttacked(p, p.KingSquare(c), c.Other())
}

// LegalMoves generates every legal move of kind gen via a make->test->
// unmake filter: a pseudo-legal move survives iff, after making it, the
// mover's king is not attacked.
func LegalMoves(p *Position, gen GenKind, list MoveList) MoveList {
	us := p.side
	pseudo := GeneratePseudoLegal(p, gen, nil)
	for _, m := range pseudo {
		p.MakeMove(m)
		if !InCheck(p, us) {
			list = append(list, m)
		}
		p.UnmakeMove(m)
	}
	return list
}

func popLSB(b *Bitboard) Square {
	sq := Square(trailingZeros(*b))
	*b &= *b - 1
	return sq
}

// LSB returns the least-significant set square of b; b must be nonzero.
func LSB(b Bitboard) Square { return Square(trailingZeros(b)) }

// Perft counts leaf nodes at depth by recursive legal-move enumeration.
func Perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := LegalMoves(p, GenAll, nil)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		p.MakeMove(m)
		nodes += Perft(p, depth-1)
		p.UnmakeMove(m)
	}
	return nodes
}
