package engine

import "fmt"

// bagAttempts bounds the rejection sampling in refill before the
// constructive fallback takes over.
const bagAttempts = 16

// Randomizer deals pieces from shuffled bags of all seven types.
//
// Plain 7-bag can repeat a type three times in twelve draws, or miss one
// entirely, across bag seams. Each new bag is therefore constrained against
// the two bags before it so that every window of 12 consecutive draws holds
// each type at least once and at most twice:
//   - the last piece never equals the first piece of the previous bag;
//   - piece k of the bag two back (k = 3..6) is not placed before slot k-2.
type Randomizer struct {
	RNG   uint64
	Bag   [NumPieceTypes]PieceType
	Pos   uint8                    // next slot in Bag; NumPieceTypes means refill
	Prev  [NumPieceTypes]PieceType // bag dealt before Bag
	Older [NumPieceTypes]PieceType // bag dealt before Prev
	Bags  uint32                   // bags generated so far
}

func newRandomizer(rng uint64) Randomizer {
	return Randomizer{RNG: rng, Pos: NumPieceTypes}
}

// Next returns the next piece in the sequence.
func (r *Randomizer) Next() (PieceType, error) {
	if r.Pos >= NumPieceTypes {
		r.refill()
	}
	if r.Pos >= NumPieceTypes {
		return PieceNone, ErrRandomizerExhausted
	}
	p := r.Bag[r.Pos]
	if !p.Valid() {
		return PieceNone, fmt.Errorf("bag slot %d holds %d: %w", r.Pos, p, ErrRandomizerExhausted)
	}
	r.Pos++
	return p, nil
}

// refill rotates the bag history and deals a new constrained bag.
func (r *Randomizer) refill() {
	if r.Bags > 0 {
		r.Older = r.Prev
		r.Prev = r.Bag
	}
	hasPrev := r.Bags >= 1
	hasOlder := r.Bags >= 2

	var bag [NumPieceTypes]PieceType
	for attempt := 0; attempt < bagAttempts; attempt++ {
		bag = AllPieces
		for i := NumPieceTypes - 1; i > 0; i-- {
			j := int(randN(&r.RNG, uint64(i+1)))
			bag[i], bag[j] = bag[j], bag[i]
		}
		if bagAllowed(bag, hasPrev, r.Prev, hasOlder, r.Older) {
			r.commit(bag)
			return
		}
	}
	r.commit(repairBag(bag, hasPrev, r.Prev, hasOlder, r.Older))
}

func (r *Randomizer) commit(bag [NumPieceTypes]PieceType) {
	r.Bag = bag
	r.Pos = 0
	r.Bags++
}

// bagAllowed checks a candidate bag against the seam constraints.
func bagAllowed(bag [NumPieceTypes]PieceType, hasPrev bool, prev [NumPieceTypes]PieceType, hasOlder bool, older [NumPieceTypes]PieceType) bool {
	if hasPrev && bag[NumPieceTypes-1] == prev[0] {
		return false
	}
	if hasOlder {
		for j := 3; j < NumPieceTypes; j++ {
			for k := 0; k <= j-3; k++ {
				if bag[k] == older[j] {
					return false
				}
			}
		}
	}
	return true
}

// repairBag builds a valid bag from a rejected shuffle: the free pieces keep
// their shuffled order up front, the tail of the older bag follows in order.
func repairBag(bag [NumPieceTypes]PieceType, hasPrev bool, prev [NumPieceTypes]PieceType, hasOlder bool, older [NumPieceTypes]PieceType) [NumPieceTypes]PieceType {
	out := bag
	if hasOlder {
		tail := older[3:]
		n := 0
		for _, p := range bag {
			if !containsPiece(tail, p) {
				out[n] = p
				n++
			}
		}
		copy(out[n:], tail)
	}
	if hasPrev && out[NumPieceTypes-1] == prev[0] {
		out[NumPieceTypes-1], out[NumPieceTypes-2] = out[NumPieceTypes-2], out[NumPieceTypes-1]
	}
	return out
}

func containsPiece(set []PieceType, p PieceType) bool {
	for _, q := range set {
		if q == p {
			return true
		}
	}
	return false
}
