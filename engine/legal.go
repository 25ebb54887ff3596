package engine

// LegalInputs returns a bitmask of inputs that would change state right now.
// Bit a is set when Action a is effective. Zero heap allocation.
func (g *GameState) LegalInputs() uint8 {
	var mask uint8
	if !g.hasActive() {
		return mask
	}
	p := &g.Active
	s := p.Shape()

	if g.Board.CanPlace(s, p.Col-1, p.Row) {
		mask |= 1 << ActionMoveLeft
	}
	if g.Board.CanPlace(s, p.Col+1, p.Row) {
		mask |= 1 << ActionMoveRight
	}
	if g.canFall() {
		mask |= 1 << ActionSoftDrop
	}
	// Hard drop always locks, even in place.
	mask |= 1 << ActionHardDrop
	if _, _, _, ok := g.resolveRotation(true); ok {
		mask |= 1 << ActionRotateCW
	}
	if _, _, _, ok := g.resolveRotation(false); ok {
		mask |= 1 << ActionRotateCCW
	}
	if !g.HoldUsed {
		mask |= 1 << ActionHold
	}
	return mask
}

// LegalInputsList returns the legal inputs as a slice (for testing; allocates).
func (g *GameState) LegalInputsList() []Action {
	mask := g.LegalInputs()
	var out []Action
	for a := Action(0); a < NumActions; a++ {
		if mask>>a&1 == 1 {
			out = append(out, a)
		}
	}
	return out
}
