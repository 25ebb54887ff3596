package engine

// PieceView is a read-only description of a piece on the board.
// Type is PieceNone when there is no piece.
type PieceView struct {
	Type     PieceType
	Rotation uint8
	Col      int
	Row      int
	Cells    [4]Point // absolute board coordinates
	Item     ItemKind
	ItemCell uint8
}

func viewOf(p *ActivePiece) PieceView {
	return PieceView{
		Type:     p.Type,
		Rotation: p.Rotation,
		Col:      p.Col,
		Row:      p.Row,
		Cells:    p.Cells(),
		Item:     p.Item,
		ItemCell: p.ItemCell,
	}
}

// Snapshot is everything a renderer or network peer needs for one frame.
// It is a value copy; mutating it does not affect the engine.
type Snapshot struct {
	Cells          [TotalRows][Width]Cell
	Phase          Phase
	Active         PieceView
	Ghost          PieceView
	Hold           PieceType
	HoldUsed       bool
	Next           [MaxPreview]PieceType
	NextLen        uint8
	Score          uint64
	Lines          uint32
	Level          uint32
	Combo          uint32
	GarbagePending int
	TimeLeftMs     uint32
	Reason         GameOverReason
	Frame          uint32
}

// Snapshot returns the current observable state.
func (g *GameState) Snapshot() Snapshot {
	s := Snapshot{
		Cells:          g.Board.Cells,
		Phase:          g.Phase,
		Hold:           g.Hold,
		HoldUsed:       g.HoldUsed,
		Next:           g.Next.Items,
		NextLen:        g.Next.Len,
		Score:          g.Stats.Score,
		Lines:          g.Stats.Lines,
		Level:          g.Stats.Level,
		Combo:          g.Stats.Combo,
		GarbagePending: g.Garbage.Pending(),
		TimeLeftMs:     g.TimeLeft,
		Reason:         g.Reason,
		Frame:          g.Frame,
	}
	if g.hasActive() {
		s.Active = viewOf(&g.Active)
		ghost, _ := g.Ghost()
		s.Ghost = viewOf(&ghost)
	}
	return s
}

// VisibleRows returns the rows below the buffer zone, top to bottom.
func (s *Snapshot) VisibleRows() [][Width]Cell {
	return s.Cells[BufferZone:]
}
