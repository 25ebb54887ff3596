package engine

// shift moves the active piece dx columns if the target is free.
func (g *GameState) shift(dx int) bool {
	p := &g.Active
	if !g.Board.CanPlace(p.Shape(), p.Col+dx, p.Row) {
		return false
	}
	p.Col += dx
	g.afterMove()
	return true
}

// rotate turns the active piece, trying the unshifted position first and
// then each kick offset for this transition in table order. A rotation with
// no legal placement leaves the piece unchanged.
func (g *GameState) rotate(clockwise bool) bool {
	col, row, to, ok := g.resolveRotation(clockwise)
	if !ok {
		return false
	}
	p := &g.Active
	p.Col, p.Row, p.Rotation = col, row, to
	g.afterMove()
	return true
}

// resolveRotation finds where a rotation would land without applying it.
func (g *GameState) resolveRotation(clockwise bool) (col, row int, to uint8, ok bool) {
	p := &g.Active
	to = (p.Rotation + 3) & 3
	if clockwise {
		to = (p.Rotation + 1) & 3
	}
	s := ShapeOf(p.Type, to)
	if g.Board.CanPlace(s, p.Col, p.Row) {
		return p.Col, p.Row, to, true
	}
	for _, k := range Kicks(p.Type, p.Rotation, clockwise) {
		if g.Board.CanPlace(s, p.Col+k.Col, p.Row+k.Row) {
			return p.Col + k.Col, p.Row + k.Row, to, true
		}
	}
	return 0, 0, 0, false
}

// stepDown moves the active piece one row down if possible.
func (g *GameState) stepDown() bool {
	if !g.canFall() {
		return false
	}
	p := &g.Active
	p.Row++
	if p.Row > p.LowestRow {
		p.LowestRow = p.Row
		p.Resets = 0
	}
	return true
}

// afterMove applies the lock-delay rules after a successful move or
// rotation. While grounded each move buys a fresh delay until the reset
// budget runs out; a move that leaves the piece unsupported returns it to
// falling.
func (g *GameState) afterMove() {
	if g.Phase != PhaseLockPending {
		return
	}
	p := &g.Active
	if p.Resets < g.Rules.maxLockResets() {
		p.Resets++
		p.LockTimer = 0
	}
	if g.canFall() {
		g.Phase = PhaseFalling
		g.Gravity = 0
	}
}

// enterLockPending starts the lock delay. With the reset budget already
// spent the piece locks on the next tick.
func (g *GameState) enterLockPending() {
	g.Phase = PhaseLockPending
	g.Gravity = 0
	p := &g.Active
	if p.Resets >= g.Rules.maxLockResets() {
		p.LockTimer = g.Rules.lockDelay()
		return
	}
	p.LockTimer = 0
}

// softDrop moves the piece down one row for one point and engages soft drop
// gravity for the next advance.
func (g *GameState) softDrop() {
	g.SoftDrop = true
	if g.stepDown() {
		g.Stats.Score += softDropPoints
		g.Gravity = 0
	}
}

// hardDrop drops the piece to its ghost row for two points per row and
// locks it immediately.
func (g *GameState) hardDrop(evs *[]Event) error {
	landing := g.ghostRow()
	dist := landing - g.Active.Row
	g.Active.Row = landing
	if landing > g.Active.LowestRow {
		g.Active.LowestRow = landing
	}
	g.Stats.Score += uint64(hardDropPoints * dist)
	return g.lock(evs)
}

// fall runs gravity and the lock delay for dt milliseconds.
func (g *GameState) fall(dt uint32, soft bool, evs *[]Event) error {
	interval := g.Stats.FallInterval
	if interval == 0 {
		interval = FallInterval(g.Stats.Level, g.Rules.Difficulty)
	}
	if soft {
		interval /= SoftDropMultiplier(g.Rules.Difficulty)
		if interval == 0 {
			interval = 1
		}
	}

	if g.Phase == PhaseFalling {
		g.Gravity += dt
		for g.Gravity >= interval {
			g.Gravity -= interval
			if !g.stepDown() {
				g.enterLockPending()
				return nil
			}
			if soft {
				g.Stats.Score += softDropPoints
			}
		}
		return nil
	}

	if g.Phase == PhaseLockPending {
		if g.canFall() {
			g.Phase = PhaseFalling
			return nil
		}
		g.Active.LockTimer += dt
		if g.Active.LockTimer >= g.Rules.lockDelay() {
			return g.lock(evs)
		}
	}
	return nil
}
