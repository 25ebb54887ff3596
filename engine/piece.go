package engine

// ActivePiece is the piece currently under player control.
type ActivePiece struct {
	Type      PieceType
	Rotation  uint8 // 0 spawn, 1 right, 2 reverse, 3 left
	Col       int   // anchor column of the bounding box
	Row       int   // anchor row of the bounding box
	LockTimer uint32
	Resets    uint8 // lock-delay resets spent since LowestRow last moved
	LowestRow int   // deepest anchor row reached
	Item      ItemKind
	ItemCell  uint8 // index into CellsOf(Type, Rotation) carrying Item
}

func newActivePiece(t PieceType) ActivePiece {
	return ActivePiece{
		Type:      t,
		Col:       SpawnCol(t),
		Row:       SpawnRow,
		LowestRow: SpawnRow,
	}
}

// Shape returns the occupancy mask in the current rotation.
func (p *ActivePiece) Shape() Shape { return ShapeOf(p.Type, p.Rotation) }

// Cells returns the absolute board coordinates of the piece's blocks.
func (p *ActivePiece) Cells() [4]Point {
	cells := CellsOf(p.Type, p.Rotation)
	for i := range cells {
		cells[i].Col += p.Col
		cells[i].Row += p.Row
	}
	return cells
}

// hasActive reports whether a piece is currently falling or grounded.
func (g *GameState) hasActive() bool {
	return g.Phase == PhaseFalling || g.Phase == PhaseLockPending
}

// canFall reports whether the active piece can move down one row.
func (g *GameState) canFall() bool {
	p := &g.Active
	return g.Board.CanPlace(p.Shape(), p.Col, p.Row+1)
}

// ghostRow projects the active piece straight down and returns the lowest
// legal anchor row. It does not mutate state.
func (g *GameState) ghostRow() int {
	p := &g.Active
	s := p.Shape()
	row := p.Row
	for g.Board.CanPlace(s, p.Col, row+1) {
		row++
	}
	return row
}

// Ghost returns the active piece moved to its hard-drop landing position.
// The second result is false when no piece is active.
func (g *GameState) Ghost() (ActivePiece, bool) {
	if !g.hasActive() {
		return ActivePiece{}, false
	}
	ghost := g.Active
	ghost.Row = g.ghostRow()
	return ghost, true
}

// spawnFromQueue pops the next piece and places it at the spawn position.
func (g *GameState) spawnFromQueue(evs *[]Event) error {
	if g.Next.Len == 0 {
		if err := g.fillQueue(); err != nil {
			return err
		}
	}
	t := g.Next.pop()
	if err := g.fillQueue(); err != nil {
		return err
	}
	g.Spawned++
	g.spawn(t, evs)
	if g.Phase == PhaseFalling {
		g.maybeAttachItem()
	}
	return nil
}

// spawn places a fresh piece of type t. A collision at the spawn position
// ends the game with ReasonBlockOut.
func (g *GameState) spawn(t PieceType, evs *[]Event) {
	g.Active = newActivePiece(t)
	g.Gravity = 0
	if !g.Board.CanPlace(g.Active.Shape(), g.Active.Col, g.Active.Row) {
		g.gameOver(ReasonBlockOut, evs)
		return
	}
	g.Phase = PhaseFalling
}
