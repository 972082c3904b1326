package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewFromFEN parses a FEN string into a fresh Position. It fails on any
// syntactic violation but does not check semantic legality beyond FEN
// grammar — strict rule validation is a caller's concern.
func NewFromFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid FEN %q: need at least 4 fields", fen)
	}

	p := &Position{}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN %q: expected 8 ranks", fen)
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			default:
				pc := PieceFromByte(byte(ch))
				if pc == NoPiece {
					return nil, fmt.Errorf("invalid FEN %q: bad piece char %q", fen, ch)
				}
				if file >= 8 {
					return nil, fmt.Errorf("invalid FEN %q: rank %d overflows", fen, rank+1)
				}
				p.placePiece(pc, FileRank(file, rank))
				file++
			}
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN %q: rank %d has %d files", fen, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		p.side = White
	case "b":
		p.side = Black
		p.reversible ^= zobristSide
	default:
		return nil, fmt.Errorf("invalid FEN %q: bad side to move %q", fen, fields[1])
	}

	st := &p.stack[0]
	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				st.castling |= WhiteKingside
			case 'Q':
				st.castling |= WhiteQueenside
			case 'k':
				st.castling |= BlackKingside
			case 'q':
				st.castling |= BlackQueenside
			default:
				return nil, fmt.Errorf("invalid FEN %q: bad castling char %q", fen, ch)
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN %q: bad en passant square: %w", fen, err)
		}
		// Only set the flag if a pawn of the side to move could actually
		// capture there; otherwise leave it cleared, so two positions that
		// differ only in an unusable claimed en-passant square hash the same.
		if p.pawnAttacksEP(sq) {
			st.epPresent = true
			st.epFile = int8(sq.File())
		}
	}

	if len(fields) > 4 {
		hm, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN %q: bad halfmove clock: %w", fen, err)
		}
		st.halfmoveClock = hm
	}
	p.fullmove = 1
	if len(fields) > 5 {
		fm, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN %q: bad fullmove number: %w", fen, err)
		}
		p.fullmove = fm
	}

	st.recomputePartialKey()
	return p, nil
}

// pawnAttacksEP reports whether a pawn of the side to move currently
// attacks sq, used to validate a claimed en-passant target at parse time.
func (p *Position) pawnAttacksEP(sq Square) bool {
	us := p.side
	var attackerRank int
	if us == White {
		attackerRank = sq.Rank() - 1
	} else {
		attackerRank = sq.Rank() + 1
	}
	if attackerRank < 0 || attackerRank > 7 {
		return false
	}
	pawns := p.colorBB[us] & p.typeBB[Pawn]
	for _, df := range [2]int{-1, 1} {
		f := sq.File() + df
		if f < 0 || f > 7 {
			continue
		}
		if pawns&SquareMask(FileRank(f, attackerRank)) != 0 {
			return true
		}
	}
	return false
}

// ToFEN emits the canonical FEN string for the current position.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.squares[FileRank(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(pc.Byte())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.side.String())
	sb.WriteByte(' ')

	st := &p.stack[p.top]
	if st.castling == 0 {
		sb.WriteByte('-')
	} else {
		if st.castling&WhiteKingside != 0 {
			sb.WriteByte('K')
		}
		if st.castling&WhiteQueenside != 0 {
			sb.WriteByte('Q')
		}
		if st.castling&BlackKingside != 0 {
			sb.WriteByte('k')
		}
		if st.castling&BlackQueenside != 0 {
			sb.WriteByte('q')
		}
	}
	sb.WriteByte(' ')

	if st.epPresent {
		sb.WriteString(p.EnPassantSquare().String())
	} else {
		sb.WriteByte('-')
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(st.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullmove))
	return sb.String()
}
