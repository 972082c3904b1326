package engine

import "chess-engine/board"

// seeValue assigns the king a value above every other piece so it is
// always the last attacker tried.
var seeValue = [7]int{
	board.NoPieceType: 0, board.Pawn: 100, board.Knight: 300, board.Bishop: 300,
	board.Rook: 500, board.Queen: 900, board.King: 5000,
}

// WinsExchange reports whether the side to move wins the capture sequence
// started by m by strictly more than threshold centipawns. It
// simulates alternating least-valuable-attacker captures on the
// destination square using a gain-array minimax pass and does not mutate
// pos.
func WinsExchange(pos *board.Position, m board.Move, threshold int) bool {
	return seeSwing(pos, m) > threshold
}

func seeSwing(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	us := pos.SideToMove()

	occ := pos.Occupied() &^ board.SquareMask(from)

	var victimValue int
	if m.Kind() == board.EPCapture {
		capSq := board.FileRank(to.File(), from.Rank())
		occ &^= board.SquareMask(capSq)
		victimValue = seeValue[board.Pawn]
	} else {
		victimValue = seeValue[pos.PieceAt(to).Type()]
	}

	attackerType := pos.PieceAt(from).Type()
	if pt := m.Kind().PromotionType(); pt != board.NoPieceType {
		attackerType = pt
	}

	var gain [32]int
	gain[0] = victimValue
	attackerValue := seeValue[attackerType]

	attackers := board.AttackersOf(pos, to, occ)
	side := us.Other()
	d := 0

	for d < len(gain)-1 {
		sideAttackers := attackers & pos.ColorBB(side) & occ
		if sideAttackers == 0 {
			break
		}
		pt, sq := leastValuableAttacker(pos, sideAttackers)

		if pt == board.King {
			opp := side.Other()
			if attackers&pos.ColorBB(opp)&occ&^board.SquareMask(sq) != 0 {
				// Opponent still covers the square: the king cannot
				// safely capture, so the exchange stops here as if this
				// side had no attacker.
				break
			}
		}

		d++
		gain[d] = attackerValue - gain[d-1]

		occ &^= board.SquareMask(sq)
		attackers = board.AttackersOf(pos, to, occ) & occ
		attackerValue = seeValue[pt]
		side = side.Other()
	}

	for d > 0 {
		if -gain[d] < gain[d-1] {
			gain[d-1] = -gain[d]
		}
		d--
	}
	return gain[0]
}

func leastValuableAttacker(pos *board.Position, attackers board.Bitboard) (board.PieceType, board.Square) {
	for _, pt := range [6]board.PieceType{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		bb := attackers & pos.TypeBB(pt)
		if bb != 0 {
			return pt, board.LSB(bb)
		}
	}
	return board.NoPieceType, board.NoSquare
}
