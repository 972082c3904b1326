package board

import "chess-engine/internal/rng"

// Zobrist constants: 12*64 piece-square, 4 castling, 8 en-passant file, 1
// side-to-move, 781 in total. The values themselves need only be fixed and
// well distributed; this module reproduces them deterministically from the
// same xoshiro256**/SplitMix64 generator the magic-number search uses
// (grounded on original_source/src/rng.c), seeded with a fixed constant so
// the table — and therefore TT entries — are reproducible across runs.
const zobristSeed = 0x5a0b21571c0de001

var (
	zobristPieceSquare [12][64]uint64 // index: piece.Type()*2+piece.Color()-2 .. see pieceZobristIndex
	zobristCastle       [4]uint64
	zobristEnPassant    [8]uint64
	zobristSide         uint64
)

func init() {
	g := rng.New(zobristSeed)
	for i := range zobristPieceSquare {
		for sq := range zobristPieceSquare[i] {
			zobristPieceSquare[i][sq] = g.Next()
		}
	}
	for i := range zobristCastle {
		zobristCastle[i] = g.Next()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = g.Next()
	}
	zobristSide = g.Next()
}

// pieceZobristIndex maps a Piece (type*2+color, 2..13) to a 0..11 row.
func pieceZobristIndex(p Piece) int { return int(p) - 2 }

func zobristForPiece(p Piece, sq Square) uint64 {
	return zobristPieceSquare[pieceZobristIndex(p)][sq]
}

func zobristForCastle(r CastleRight) uint64 {
	switch r {
	case WhiteKingside:
		return zobristCastle[0]
	case WhiteQueenside:
		return zobristCastle[1]
	case BlackKingside:
		return zobristCastle[2]
	case BlackQueenside:
		return zobristCastle[3]
	default:
		return 0
	}
}

func zobristForEPFile(file int) uint64 { return zobristEnPassant[file] }
