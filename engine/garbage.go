package engine

import "fmt"

// GarbageSpec describes attack lines: Lines rows, each with a gap at Hole.
type GarbageSpec struct {
	Lines uint8 `json:"lines"`
	Hole  uint8 `json:"hole"`
}

// MaxGarbageSpecs bounds the incoming queue. Every spec carries at least
// one line and pending lines are capped at TotalRows, so it never fills.
const MaxGarbageSpecs = TotalRows

// GarbageQueue holds incoming attacks until the receiver's next lock.
type GarbageQueue struct {
	Specs [MaxGarbageSpecs]GarbageSpec
	Len   uint8
}

// Pending returns the total number of queued garbage rows.
func (q *GarbageQueue) Pending() int {
	n := 0
	for _, s := range q.Specs[:q.Len] {
		n += int(s.Lines)
	}
	return n
}

// ReceiveGarbage queues an attack from the opponent. It is applied at this
// engine's next lock, never mid-fall. Lines beyond TotalRows pending are
// dropped since that many rows already force a top-out.
func (g *GameState) ReceiveGarbage(spec GarbageSpec) error {
	if g.IsGameOver() {
		return ErrEngineHalted
	}
	if int(spec.Hole) >= Width {
		return fmt.Errorf("garbage hole %d: %w", spec.Hole, ErrOutOfBounds)
	}
	if spec.Lines == 0 {
		return nil
	}
	room := TotalRows - g.Garbage.Pending()
	if room <= 0 || int(g.Garbage.Len) >= MaxGarbageSpecs {
		return nil
	}
	if int(spec.Lines) > room {
		spec.Lines = uint8(room)
	}
	g.Garbage.Specs[g.Garbage.Len] = spec
	g.Garbage.Len++
	return nil
}

// applyPendingGarbage inserts every queued spec at the bottom of the board
// in arrival order and empties the queue. It returns false when a block was
// pushed off the top of the grid. A stack pushed only into the spawn area
// tops out through the normal spawn check.
func (g *GameState) applyPendingGarbage(evs *[]Event) bool {
	if g.Garbage.Len == 0 {
		return true
	}
	total := 0
	overflow := false
	for i := uint8(0); i < g.Garbage.Len; i++ {
		s := g.Garbage.Specs[i]
		if g.Board.InsertGarbage(int(s.Lines), int(s.Hole)) {
			overflow = true
		}
		total += int(s.Lines)
		g.Garbage.Specs[i] = GarbageSpec{}
	}
	g.Garbage.Len = 0
	emit(evs, Event{Type: EventGarbageApplied, Lines: uint8(total)})
	return !overflow
}

// sendGarbage emits the attack produced by clearing n rows, if any. The hole
// column comes from the engine's garbage stream.
func (g *GameState) sendGarbage(n int, evs *[]Event) {
	lines := GarbageFor(n)
	if lines == 0 {
		return
	}
	spec := GarbageSpec{
		Lines: lines,
		Hole:  uint8(randN(&g.GarbageRNG, Width)),
	}
	g.Stats.GarbageSent += uint32(lines)
	emit(evs, Event{Type: EventGarbagePushed, Garbage: spec})
}
