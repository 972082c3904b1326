package board

import "fmt"

// Move packs from (6 bits), to (6 bits) and kind (4 bits) into 16 bits; no
// piece, captured-piece or promotion-piece fields are carried, since those
// are always re-derived from the position at apply time.
type Move uint16

type MoveKind uint8

const (
	Quiet MoveKind = iota
	DoublePawnPush
	KingCastle
	QueenCastle
	Capture
	EPCapture
	KnightPromotion
	BishopPromotion
	RookPromotion
	QueenPromotion
	KnightPromoCapture
	BishopPromoCapture
	RookPromoCapture
	QueenPromoCapture
)

const NoMove Move = 0

func NewMove(from, to Square, kind MoveKind) Move {
	return Move(uint16(from) | uint16(to)<<6 | uint16(kind)<<12)
}

func (m Move) From() Square { return Square(m & 0x3f) }
func (m Move) To() Square   { return Square((m >> 6) & 0x3f) }
func (m Move) Kind() MoveKind { return MoveKind((m >> 12) & 0xf) }

func (m MoveKind) IsCapture() bool {
	switch m {
	case Capture, EPCapture, KnightPromoCapture, BishopPromoCapture, RookPromoCapture, QueenPromoCapture:
		return true
	}
	return false
}

func (m MoveKind) IsPromotion() bool {
	switch m {
	case KnightPromotion, BishopPromotion, RookPromotion, QueenPromotion,
		KnightPromoCapture, BishopPromoCapture, RookPromoCapture, QueenPromoCapture:
		return true
	}
	return false
}

// PromotionType returns the piece type a promotion move produces, or
// NoPieceType if m is not a promotion.
func (m MoveKind) PromotionType() PieceType {
	switch m {
	case KnightPromotion, KnightPromoCapture:
		return Knight
	case BishopPromotion, BishopPromoCapture:
		return Bishop
	case RookPromotion, RookPromoCapture:
		return Rook
	case QueenPromotion, QueenPromoCapture:
		return Queen
	}
	return NoPieceType
}

var promoLetters = map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
var promoFromLetter = map[byte]PieceType{'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen}

// String renders the move in LAN: <from><to>[<promotion>]. The empty move
// renders as the empty string.
func (m Move) String() string {
	if m == NoMove {
		return ""
	}
	s := m.From().String() + m.To().String()
	if pt := m.Kind().PromotionType(); pt != NoPieceType {
		s += string(promoLetters[pt])
	}
	return s
}

func promoKind(capture bool, pt PieceType) MoveKind {
	var quiet, cap MoveKind
	switch pt {
	case Knight:
		quiet, cap = KnightPromotion, KnightPromoCapture
	case Bishop:
		quiet, cap = BishopPromotion, BishopPromoCapture
	case Rook:
		quiet, cap = RookPromotion, RookPromoCapture
	case Queen:
		quiet, cap = QueenPromotion, QueenPromoCapture
	}
	if capture {
		return cap
	}
	return quiet
}

// ParseLAN parses "<from><to>[<promo>]" into a from/to/promotion triple.
// It does not know the move kind (capture vs quiet, castle, en passant) —
// the caller must match it against a generated pseudo-legal move list.
func ParseLAN(s string) (from, to Square, promo PieceType, err error) {
	if len(s) < 4 || len(s) > 5 {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid LAN move %q", s)
	}
	from, err = ParseSquare(s[0:2])
	if err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	to, err = ParseSquare(s[2:4])
	if err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	if len(s) == 5 {
		pt, ok := promoFromLetter[s[4]]
		if !ok {
			return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid promotion letter in %q", s)
		}
		promo = pt
	}
	return from, to, promo, nil
}
