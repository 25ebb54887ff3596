package engine

import "fmt"

// lock merges the active piece and resolves everything that follows, in
// order: mode hook, row clear, scoring, outgoing garbage, incoming garbage,
// next spawn. Only incoming garbage or the spawn check can end the game.
func (g *GameState) lock(evs *[]Event) error {
	p := g.Active
	g.Phase = PhaseLocked
	if err := g.Board.Merge(p.Shape(), p.Col, p.Row, p.Type.Color()); err != nil {
		return fmt.Errorf("lock %s at (%d,%d) rot %d: %w", p.Type, p.Col, p.Row, p.Rotation, err)
	}
	g.Stats.Pieces++
	emit(evs, Event{Type: EventLocked, Piece: p.Type})

	if hook := g.Rules.Mode.PostLock(); hook != nil {
		hook(g, &p, evs)
	}

	cleared := g.Board.ClearFullRows()
	g.scoreLock(cleared)
	if cleared > 0 {
		emit(evs, Event{Type: EventLinesCleared, Piece: p.Type, Lines: uint8(cleared)})
		if g.Rules.Competitive {
			g.sendGarbage(cleared, evs)
		}
	}

	if g.goalReached() {
		g.gameOver(ReasonGoalReached, evs)
		return nil
	}

	if !g.applyPendingGarbage(evs) {
		g.gameOver(ReasonTopOut, evs)
		return nil
	}

	g.Active = ActivePiece{}
	g.HoldUsed = false
	g.Phase = PhaseSpawning
	return g.spawnFromQueue(evs)
}
