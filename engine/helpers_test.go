package engine

import "testing"

// startedGame returns a game whose first piece has spawned.
func startedGame(t *testing.T, seed uint64, rules Rules) GameState {
	t.Helper()
	g := NewGame(seed, rules)
	evs, err := g.Advance(0)
	if err != nil {
		t.Fatalf("first Advance: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("first Advance events = %+v, want none", evs)
	}
	if g.Phase != PhaseFalling {
		t.Fatalf("Phase = %s after first Advance, want falling", g.Phase)
	}
	return g
}

// force replaces the active piece with a fresh spawn of type p.
func force(g *GameState, p PieceType) {
	g.Active = newActivePiece(p)
	g.Phase = PhaseFalling
	g.Gravity = 0
}

// place puts a piece of type p at (col, row) in rotation rot.
func place(g *GameState, p PieceType, rot uint8, col, row int) {
	g.Active = ActivePiece{Type: p, Rotation: rot, Col: col, Row: row, LowestRow: row}
	g.Phase = PhaseFalling
	g.Gravity = 0
}

// fillRow fills row r with garbage except the listed columns.
func fillRow(b *Board, r int, except ...int) {
	for c := 0; c < Width; c++ {
		b.Cells[r][c] = CellGarbage
	}
	for _, c := range except {
		b.Cells[r][c] = CellEmpty
	}
}

func input(t *testing.T, g *GameState, actions ...Action) []Event {
	t.Helper()
	var out []Event
	for _, a := range actions {
		evs, err := g.ApplyInput(a)
		if err != nil {
			t.Fatalf("input %s: %v", a, err)
		}
		out = append(out, evs...)
	}
	return out
}

func advance(t *testing.T, g *GameState, dtMs uint32) []Event {
	t.Helper()
	evs, err := g.Advance(dtMs)
	if err != nil {
		t.Fatalf("Advance(%d): %v", dtMs, err)
	}
	return evs
}

func eventsOf(evs []Event, typ EventType) []Event {
	var out []Event
	for _, ev := range evs {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func repeat(a Action, n int) []Action {
	out := make([]Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}
