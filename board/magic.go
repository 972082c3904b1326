package board

import "chess-engine/internal/rng"

// magicEntry mirrors original_source's `struct magic` (ptr/mask/num/shift):
// a relevant-occupancy mask, a magic multiplier, a shift, and an offset
// into a flat attack-table region for this square.
type magicEntry struct {
	mask   Bitboard
	magic  uint64
	shift  uint
	offset int
}

var rookMagics [64]magicEntry
var bishopMagics [64]magicEntry
var rookAttackTable []Bitboard
var bishopAttackTable []Bitboard

// magicSeed fixes the PRNG stream so the generated magic numbers — and the
// flat attack tables indexed by them — are reproducible across runs and
// across platforms.
const magicSeed = 0x1a2b3c4d5e6f7081

func init() {
	g := rng.New(magicSeed)
	buildMagics(rookDirections, rookMagics[:], &rookAttackTable, g)
	buildMagics(bishopDirections, bishopMagics[:], &bishopAttackTable, g)
}

func buildMagics(dirs [4][2]int, magics []magicEntry, table *[]Bitboard, g *rng.Source) {
	var occupancySets [64][]Bitboard // per-square list of every occupancy subset of its mask
	var referenceAttacks [64][]Bitboard

	total := 0
	for sq := 0; sq < 64; sq++ {
		mask := relevantOccupancyMask(Square(sq), dirs)
		subsets := enumerateSubsets(mask)
		refs := make([]Bitboard, len(subsets))
		for i, occ := range subsets {
			refs[i] = slidingAttacksSlow(Square(sq), dirs, occ)
		}
		occupancySets[sq] = subsets
		referenceAttacks[sq] = refs
		bitsUsed := popcount(mask)
		magics[sq] = magicEntry{mask: mask, shift: uint(64 - bitsUsed)}
		total += 1 << bitsUsed
	}

	*table = make([]Bitboard, total)
	offset := 0
	for sq := 0; sq < 64; sq++ {
		subsets := occupancySets[sq]
		refs := referenceAttacks[sq]
		m := &magics[sq]
		m.offset = offset
		region := (*table)[offset : offset+len(subsets)]
		m.magic = findMagic(m.mask, m.shift, subsets, refs, region, g)
		offset += len(subsets)
	}
}

// enumerateSubsets returns every subset of mask via the Carry-Rippler
// trick: start at 0, repeatedly compute (n - mask) & mask to advance to the
// next subset, until wrapping back to 0.
func enumerateSubsets(mask Bitboard) []Bitboard {
	subsets := make([]Bitboard, 0, 1<<popcount(mask))
	var n Bitboard
	for {
		subsets = append(subsets, n)
		n = (n - mask) & mask
		if n == 0 {
			break
		}
	}
	return subsets
}

// findMagic retries sparse random candidates until one maps every
// occupancy subset to a slot agreeing with its reference attack set
// (distinct slots may coincide only when their reference attacks match).
func findMagic(mask Bitboard, shift uint, subsets, refs []Bitboard, region []Bitboard, g *rng.Source) uint64 {
	for {
		candidate := g.NextSparse()
		for i := range region {
			region[i] = 0
		}
		ok := true
		for i, occ := range subsets {
			idx := int((occ * Bitboard(candidate)) >> shift)
			if region[idx] == 0 {
				region[idx] = refs[i]
			} else if region[idx] != refs[i] {
				ok = false
				break
			}
		}
		if ok {
			return candidate
		}
	}
}
