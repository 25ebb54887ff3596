package engine

import (
	"errors"
	"testing"
)

func TestNewGameInitialState(t *testing.T) {
	g := NewGame(42, DefaultRules())
	if g.Phase != PhaseSpawning {
		t.Errorf("Phase = %s, want spawning", g.Phase)
	}
	if g.Next.Len != 5 {
		t.Errorf("Next.Len = %d, want 5", g.Next.Len)
	}
	if g.Stats.Level != 1 || g.Stats.FallInterval != 1000 {
		t.Errorf("level %d interval %d, want 1 and 1000", g.Stats.Level, g.Stats.FallInterval)
	}
	if g.Hold != PieceNone {
		t.Errorf("Hold = %s, want none", g.Hold)
	}
	if n := g.Board.Occupied(); n != 0 {
		t.Errorf("Occupied = %d, want 0", n)
	}
	if g.IsGameOver() {
		t.Error("fresh game is over")
	}

	// Zero rules behave like the defaults.
	z := NewGame(42, Rules{})
	if z.Next != g.Next || z.Stats != g.Stats {
		t.Error("zero Rules differ from DefaultRules")
	}
}

func TestNewGameDeterministic(t *testing.T) {
	a := NewGame(7, DefaultRules())
	b := NewGame(7, DefaultRules())
	if a != b {
		t.Fatal("same seed produced different states")
	}
	if a.StateHash() != b.StateHash() {
		t.Error("same seed produced different hashes")
	}

	c := NewGame(8, DefaultRules())
	if a.StateHash() == c.StateHash() {
		t.Error("different seeds produced the same hash")
	}
}

func TestStateHashCoversEveryField(t *testing.T) {
	base := startedGame(t, 21, VersusRules())
	h := base.StateHash()

	cases := []struct {
		name   string
		mutate func(g *GameState)
	}{
		{"soft drop", func(g *GameState) { g.SoftDrop = true }},
		{"spawned", func(g *GameState) { g.Spawned++ }},
		{"elapsed", func(g *GameState) { g.Elapsed += 16 }},
		{"bag order", func(g *GameState) { g.Bag.Bag[0], g.Bag.Bag[6] = g.Bag.Bag[6], g.Bag.Bag[0] }},
		{"previous bag", func(g *GameState) { g.Bag.Prev[2] ^= 1 }},
		{"older bag", func(g *GameState) { g.Bag.Older[4] ^= 1 }},
		{"bag count", func(g *GameState) { g.Bag.Bags++ }},
		{"level", func(g *GameState) { g.Stats.Level++ }},
		{"fall interval", func(g *GameState) { g.Stats.FallInterval-- }},
		{"pieces", func(g *GameState) { g.Stats.Pieces++ }},
		{"quads", func(g *GameState) { g.Stats.Quads++ }},
		{"garbage sent", func(g *GameState) { g.Stats.GarbageSent++ }},
		{"hold used", func(g *GameState) { g.HoldUsed = true }},
		{"reason", func(g *GameState) { g.Reason = ReasonTimeExpired }},
		{"seed", func(g *GameState) { g.Seed ^= 1 }},
		{"rules", func(g *GameState) { g.Rules.ItemEvery = 3 }},
	}
	for _, tc := range cases {
		g := base
		tc.mutate(&g)
		if g.StateHash() == h {
			t.Errorf("%s: hash unchanged", tc.name)
		}
	}

	// The Advance counter alone is not play state.
	g := base
	g.Frame += 100
	if g.StateHash() != h {
		t.Error("Frame changed the hash")
	}
}

func TestSoftDropFlagChangesOutcome(t *testing.T) {
	a := startedGame(t, 1, DefaultRules())
	b := a
	b.SoftDrop = true
	if a.StateHash() == b.StateHash() {
		t.Fatal("soft drop flag not hashed")
	}
	if _, err := a.Advance(100); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Advance(100); err != nil {
		t.Fatal(err)
	}
	if a.Active.Row == b.Active.Row {
		t.Errorf("both pieces at row %d; soft drop should fall faster", a.Active.Row)
	}
}

func TestFirstAdvanceSpawns(t *testing.T) {
	g := NewGame(3, DefaultRules())
	first := g.Next.Peek(0)
	second := g.Next.Peek(1)

	if _, err := g.Advance(0); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if g.Phase != PhaseFalling {
		t.Fatalf("Phase = %s, want falling", g.Phase)
	}
	if g.Active.Type != first {
		t.Errorf("Active = %s, want %s", g.Active.Type, first)
	}
	if g.Active.Col != SpawnCol(first) || g.Active.Row != SpawnRow {
		t.Errorf("spawned at (%d,%d), want (%d,%d)", g.Active.Col, g.Active.Row, SpawnCol(first), SpawnRow)
	}
	if g.Next.Peek(0) != second {
		t.Errorf("queue head = %s, want %s", g.Next.Peek(0), second)
	}
	if g.Next.Len != 5 {
		t.Errorf("Next.Len = %d after spawn, want 5", g.Next.Len)
	}
}

func TestGravity(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	row := g.Active.Row

	advance(t, &g, 999)
	if g.Active.Row != row {
		t.Errorf("fell early: row %d", g.Active.Row)
	}

	advance(t, &g, 1)
	if g.Active.Row != row+1 {
		t.Errorf("row = %d after 1000ms, want %d", g.Active.Row, row+1)
	}

	// A large dt applies several rows.
	advance(t, &g, 2500)
	if g.Active.Row != row+3 {
		t.Errorf("row = %d after 3500ms, want %d", g.Active.Row, row+3)
	}
}

func TestSoftDrop(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	row := g.Active.Row

	input(t, &g, ActionSoftDrop)
	if g.Active.Row != row+1 || g.Stats.Score != 1 || !g.SoftDrop {
		t.Fatalf("after soft drop: row %d score %d flag %v", g.Active.Row, g.Stats.Score, g.SoftDrop)
	}

	// Soft gravity at level 1 is 1000/20 ms per row.
	advance(t, &g, 50)
	if g.Active.Row != row+2 {
		t.Errorf("row = %d, want %d", g.Active.Row, row+2)
	}
	if g.Stats.Score != 2 {
		t.Errorf("Score = %d, want 2", g.Stats.Score)
	}
	if g.SoftDrop {
		t.Error("soft drop outlived one advance")
	}

	advance(t, &g, 50)
	if g.Active.Row != row+2 {
		t.Errorf("normal gravity fell to row %d", g.Active.Row)
	}
}

func TestMoveBlockedByWall(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	force(&g, PieceO)
	input(t, &g, repeat(ActionMoveLeft, 10)...)
	if g.Active.Col != 0 {
		t.Fatalf("Col = %d, want 0", g.Active.Col)
	}

	s := g.Save()
	input(t, &g, ActionMoveLeft)
	if g.Save() != s {
		t.Error("blocked move changed the state")
	}

	input(t, &g, repeat(ActionMoveRight, 20)...)
	if g.Active.Col != Width-2 {
		t.Errorf("Col = %d, want %d", g.Active.Col, Width-2)
	}
}

func TestRotationWallKick(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	place(&g, PieceT, 1, -1, 10)
	if !g.Board.CanPlace(g.Active.Shape(), -1, 10) {
		t.Fatal("T R does not fit against the left wall")
	}

	input(t, &g, ActionRotateCW)
	if g.Active.Rotation != 2 {
		t.Errorf("Rotation = %d, want 2", g.Active.Rotation)
	}
	// Kicked one column right.
	if g.Active.Col != 0 || g.Active.Row != 10 {
		t.Errorf("anchor (%d,%d), want (0,10)", g.Active.Col, g.Active.Row)
	}
}

func TestRotationRejected(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	force(&g, PieceT)
	own := g.Active.Cells()
	for r := 0; r < TotalRows; r++ {
		fillRow(&g.Board, r)
	}
	for _, p := range own {
		g.Board.Cells[p.Row][p.Col] = CellEmpty
	}

	s := g.Save()
	input(t, &g, ActionRotateCW, ActionRotateCCW)
	if g.Save() != s {
		t.Error("rotation with no legal kick changed the state")
	}
}

func TestRotationCycle(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	force(&g, PieceL)
	input(t, &g, ActionSoftDrop, ActionSoftDrop, ActionSoftDrop)
	col, row := g.Active.Col, g.Active.Row
	input(t, &g, repeat(ActionRotateCW, 4)...)
	if g.Active.Rotation != 0 || g.Active.Col != col || g.Active.Row != row {
		t.Errorf("after four turns: rot %d at (%d,%d), want 0 at (%d,%d)",
			g.Active.Rotation, g.Active.Col, g.Active.Row, col, row)
	}

	input(t, &g, ActionRotateCCW)
	if g.Active.Rotation != 3 {
		t.Errorf("Rotation = %d, want 3", g.Active.Rotation)
	}
}

func TestHardDropLocksAtGhost(t *testing.T) {
	g := startedGame(t, 5, DefaultRules())
	force(&g, PieceT)
	// A step under the piece's left side.
	g.Board.Cells[TotalRows-1][3] = CellGarbage
	g.Board.Cells[TotalRows-2][3] = CellGarbage

	ghost, ok := g.Ghost()
	if !ok {
		t.Fatal("no ghost")
	}
	supported := false
	for _, c := range ghost.Cells() {
		if g.Board.IsOccupied(c.Col, c.Row+1) {
			supported = true
		}
	}
	if !supported {
		t.Error("ghost does not rest on the floor or the stack")
	}

	startRow := g.Active.Row
	evs := input(t, &g, ActionHardDrop)
	if len(evs) == 0 {
		t.Fatal("hard drop produced no events")
	}
	if want := (Event{Type: EventLocked, Piece: PieceT}); evs[0] != want {
		t.Errorf("first event = %+v, want %+v", evs[0], want)
	}
	for _, c := range ghost.Cells() {
		if g.Board.Cells[c.Row][c.Col] != PieceT.Color() {
			t.Errorf("ghost cell (%d,%d) not locked", c.Col, c.Row)
		}
	}
	if want := uint64(2 * (ghost.Row - startRow)); g.Stats.Score != want {
		t.Errorf("Score = %d, want %d", g.Stats.Score, want)
	}
	if g.Stats.Pieces != 1 {
		t.Errorf("Pieces = %d, want 1", g.Stats.Pieces)
	}
	if g.Phase != PhaseFalling {
		t.Errorf("Phase = %s, want the next piece falling", g.Phase)
	}
}

func TestSpawnCollisionBlockOut(t *testing.T) {
	g := NewGame(9, DefaultRules())
	for r := 0; r < BufferZone; r++ {
		g.Board.Cells[r][4] = CellGarbage
	}

	evs := advance(t, &g, 16)
	if len(evs) != 1 {
		t.Fatalf("events = %+v, want one game over", evs)
	}
	if want := (Event{Type: EventGameOver, Reason: ReasonBlockOut}); evs[0] != want {
		t.Errorf("event = %+v, want %+v", evs[0], want)
	}
	if !g.IsGameOver() || g.Reason != ReasonBlockOut {
		t.Errorf("phase %s reason %s, want game over by block out", g.Phase, g.Reason)
	}
}

func TestHaltedEngine(t *testing.T) {
	g := NewGame(9, DefaultRules())
	for r := 0; r < BufferZone; r++ {
		g.Board.Cells[r][4] = CellGarbage
	}
	advance(t, &g, 16)
	s := g.Save()

	_, err := g.Advance(16)
	if !errors.Is(err, ErrEngineHalted) {
		t.Errorf("Advance: err = %v, want ErrEngineHalted", err)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ErrEngineHalted should wrap ErrInvalidTransition")
	}
	if _, err := g.ApplyInput(ActionHardDrop); !errors.Is(err, ErrEngineHalted) {
		t.Errorf("ApplyInput: err = %v, want ErrEngineHalted", err)
	}
	if err := g.ReceiveGarbage(GarbageSpec{Lines: 2, Hole: 1}); !errors.Is(err, ErrEngineHalted) {
		t.Errorf("ReceiveGarbage: err = %v, want ErrEngineHalted", err)
	}
	if g.Save() != s {
		t.Error("halted engine changed")
	}
}

func TestUnknownAction(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	if _, err := g.ApplyInput(Action(99)); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}

func TestInputWithoutActivePiece(t *testing.T) {
	g := NewGame(1, DefaultRules())
	evs, err := g.ApplyInput(ActionMoveLeft)
	if err != nil {
		t.Fatalf("ApplyInput: %v", err)
	}
	if len(evs) != 0 {
		t.Errorf("events = %+v, want none", evs)
	}
	if g.Phase != PhaseSpawning {
		t.Errorf("Phase = %s, want spawning", g.Phase)
	}
}

func TestLockDelay(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	place(&g, PieceO, 0, 4, TotalRows-2)

	advance(t, &g, 1000)
	if g.Phase != PhaseLockPending {
		t.Fatalf("Phase = %s, want lock_pending", g.Phase)
	}

	advance(t, &g, 499)
	if g.Phase != PhaseLockPending {
		t.Errorf("locked before the delay ran out")
	}

	input(t, &g, ActionMoveLeft)
	if g.Active.LockTimer != 0 || g.Active.Resets != 1 {
		t.Errorf("timer %d resets %d, want the move to reset the delay", g.Active.LockTimer, g.Active.Resets)
	}

	if evs := advance(t, &g, 499); len(evs) != 0 {
		t.Errorf("events before delay = %+v", evs)
	}

	evs := advance(t, &g, 1)
	if len(evs) == 0 || evs[0].Type != EventLocked {
		t.Fatalf("events = %+v, want a lock", evs)
	}
	if g.Board.Cells[TotalRows-1][3] != PieceO.Color() {
		t.Error("O not locked in column 3")
	}
}

func TestLockDelayResetBudget(t *testing.T) {
	rules := DefaultRules()
	rules.MaxLockResets = 2
	g := startedGame(t, 1, rules)
	place(&g, PieceO, 0, 4, TotalRows-2)

	advance(t, &g, 1000)
	if g.Phase != PhaseLockPending {
		t.Fatalf("Phase = %s, want lock_pending", g.Phase)
	}

	input(t, &g, ActionMoveLeft)
	advance(t, &g, 400)
	input(t, &g, ActionMoveRight)
	advance(t, &g, 400)

	// Budget spent: this move does not reset the timer.
	input(t, &g, ActionMoveLeft)
	if g.Active.LockTimer != 400 {
		t.Errorf("LockTimer = %d, want 400", g.Active.LockTimer)
	}

	evs := advance(t, &g, 100)
	if len(evs) == 0 || evs[0].Type != EventLocked {
		t.Errorf("events = %+v, want a lock", evs)
	}
}

func TestMoveOffLedgeResumesFalling(t *testing.T) {
	g := startedGame(t, 1, DefaultRules())
	// Ledge under columns 3-4 only.
	g.Board.Cells[12][3] = CellGarbage
	g.Board.Cells[12][4] = CellGarbage
	place(&g, PieceO, 0, 3, 10)

	advance(t, &g, 1000)
	if g.Phase != PhaseLockPending {
		t.Fatalf("Phase = %s, want lock_pending", g.Phase)
	}

	input(t, &g, ActionMoveRight, ActionMoveRight)
	if g.Phase != PhaseFalling {
		t.Errorf("Phase = %s, want falling", g.Phase)
	}
}

func TestSaveRestore(t *testing.T) {
	g := startedGame(t, 11, DefaultRules())
	s := g.Save()
	h := g.StateHash()

	input(t, &g, ActionMoveLeft, ActionRotateCW, ActionHardDrop)
	if g.StateHash() == h {
		t.Fatal("hash unchanged after a hard drop")
	}

	g.Restore(s)
	if g.StateHash() != h || g.Save() != s {
		t.Error("Restore did not return to the saved state")
	}
}

func TestSnapshot(t *testing.T) {
	g := startedGame(t, 2, DefaultRules())
	g.Board.Cells[TotalRows-1][0] = CellGarbage
	if err := g.ReceiveGarbage(GarbageSpec{Lines: 3, Hole: 2}); err != nil {
		t.Fatal(err)
	}

	snap := g.Snapshot()
	if snap.Active.Type != g.Active.Type || snap.Active.Cells != g.Active.Cells() {
		t.Errorf("active view %+v does not match the engine", snap.Active)
	}
	ghost, _ := g.Ghost()
	if snap.Ghost.Row != ghost.Row {
		t.Errorf("ghost row %d, want %d", snap.Ghost.Row, ghost.Row)
	}
	if snap.GarbagePending != 3 {
		t.Errorf("GarbagePending = %d, want 3", snap.GarbagePending)
	}
	if snap.Next != g.Next.Items {
		t.Error("next queue differs")
	}
	rows := snap.VisibleRows()
	if len(rows) != Height {
		t.Fatalf("%d visible rows, want %d", len(rows), Height)
	}
	if rows[Height-1][0] != CellGarbage {
		t.Error("floor garbage missing from the visible rows")
	}

	snap.Cells[0][0] = CellGarbage
	if g.Board.Cells[0][0] != CellEmpty {
		t.Error("snapshot shares memory with the engine")
	}
}

func TestLevelProgression(t *testing.T) {
	rules := DefaultRules()
	rules.LinesPerLevel = 1
	g := startedGame(t, 4, rules)
	fillRow(&g.Board, TotalRows-1, 0, 1, 2, 3)
	force(&g, PieceI)
	input(t, &g, repeat(ActionMoveLeft, 3)...)
	evs := input(t, &g, ActionHardDrop)

	if n := len(eventsOf(evs, EventLinesCleared)); n != 1 {
		t.Fatalf("%d clear events, want 1", n)
	}
	if g.Stats.Level != 2 {
		t.Errorf("Level = %d, want 2", g.Stats.Level)
	}
	if want := FallInterval(2, DifficultyNormal); g.Stats.FallInterval != want {
		t.Errorf("FallInterval = %d, want %d", g.Stats.FallInterval, want)
	}
}

func TestStartLevel(t *testing.T) {
	rules := DefaultRules()
	rules.StartLevel = 5
	g := NewGame(1, rules)
	if g.Stats.Level != 5 || g.Stats.FallInterval != 355 {
		t.Errorf("level %d interval %d, want 5 and 355", g.Stats.Level, g.Stats.FallInterval)
	}
}
