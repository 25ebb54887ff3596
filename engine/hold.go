package engine

// hold swaps the active piece into the hold slot. It is allowed once per
// piece: HoldUsed is cleared only when a locked piece is replaced from the
// queue. The incoming piece restarts at the spawn position.
func (g *GameState) hold(evs *[]Event) error {
	if g.HoldUsed {
		return nil
	}
	held := g.Hold
	g.Hold = g.Active.Type
	g.HoldUsed = true
	if held == PieceNone {
		return g.spawnFromQueue(evs)
	}
	g.spawn(held, evs)
	return nil
}
