// Package engine implements the per-player falling-block simulation.
//
// A GameState is a flat value type (no pointers, no slices) that owns one
// player's board, active piece, hold slot, next queue, garbage queue and
// stats. Identical seeds, rules and input sequences produce bit-identical
// states, which lockstep multiplayer and replays rely on. The engine never
// blocks, logs or talks to the network: a driver calls Advance once per
// frame and ApplyInput per discrete input, and routes GarbagePushed events
// to the opponent's ReceiveGarbage.
package engine

import "fmt"

// Stats holds the scoring state. Only the lock and timing code mutates it.
type Stats struct {
	Score        uint64
	Lines        uint32
	Level        uint32
	Combo        uint32 // consecutive clearing locks
	FallInterval uint32 // ms per gravity row at the current level
	Pieces       uint32 // pieces locked
	Quads        uint32 // four-row clears
	GarbageSent  uint32
}

// GameState holds the complete, self-contained state of one player's game.
type GameState struct {
	Board    Board
	Active   ActivePiece
	Phase    Phase
	Hold     PieceType
	HoldUsed bool
	Next     NextQueue
	Bag      Randomizer
	Garbage  GarbageQueue
	Stats    Stats
	Rules    Rules
	Reason   GameOverReason

	Seed       uint64
	RNG        uint64 // item stream
	GarbageRNG uint64 // garbage hole stream
	Gravity    uint32 // ms accumulated toward the next gravity row
	SoftDrop   bool   // soft drop engaged for the next advance
	TimeLeft   uint32 // time attack ms remaining
	Elapsed    uint64 // ms advanced
	Frame      uint32 // Advance calls
	Spawned    uint32 // pieces taken from the next queue
}

// NewGame initializes a GameState with the given seed and rules. The first
// piece spawns on the first Advance.
func NewGame(seed uint64, rules Rules) GameState {
	var g GameState
	g.Seed = seed
	g.Rules = rules
	g.Bag = newRandomizer(deriveStream(seed, saltBag))
	g.GarbageRNG = deriveStream(seed, saltGarbage)
	g.RNG = deriveStream(seed, saltItems)
	g.Phase = PhaseSpawning
	g.updateLevel()
	if rules.Mode == ModeTimeAttack {
		g.TimeLeft = g.Rules.timeLimit()
	}
	if err := g.fillQueue(); err != nil {
		// A fresh bag always deals; anything else is a broken build.
		panic(fmt.Sprintf("engine: %v", err))
	}
	return g
}

// ---------------------------------------------------------------------------
// Driver surface
// ---------------------------------------------------------------------------

// Advance runs the simulation forward by dtMs milliseconds: the time attack
// clock, a pending spawn, gravity and the lock delay. It returns the events
// produced. Once the game is over it returns ErrEngineHalted and changes
// nothing.
func (g *GameState) Advance(dtMs uint32) ([]Event, error) {
	if g.IsGameOver() {
		return nil, ErrEngineHalted
	}
	var evs []Event
	g.Frame++
	g.Elapsed += uint64(dtMs)

	if g.tickClock(dtMs, &evs) {
		return evs, nil
	}

	if g.Phase == PhaseSpawning {
		if err := g.spawnFromQueue(&evs); err != nil {
			return evs, err
		}
		if g.IsGameOver() {
			return evs, nil
		}
	}

	soft := g.SoftDrop
	g.SoftDrop = false
	if err := g.fall(dtMs, soft, &evs); err != nil {
		return evs, err
	}
	return evs, nil
}

// ApplyInput applies one player input. Inputs the rules block (a move into
// a wall, a rotation with no legal kick, a second hold) are silent no-ops.
// A hard drop locks within the same call. Once the game is over it returns
// ErrEngineHalted and changes nothing.
func (g *GameState) ApplyInput(a Action) ([]Event, error) {
	if g.IsGameOver() {
		return nil, ErrEngineHalted
	}
	if a >= NumActions {
		return nil, fmt.Errorf("action %d: %w", a, ErrUnknownAction)
	}
	if !g.hasActive() {
		return nil, nil
	}

	var evs []Event
	var err error
	switch a {
	case ActionMoveLeft:
		g.shift(-1)
	case ActionMoveRight:
		g.shift(1)
	case ActionSoftDrop:
		g.softDrop()
	case ActionHardDrop:
		err = g.hardDrop(&evs)
	case ActionRotateCW:
		g.rotate(true)
	case ActionRotateCCW:
		g.rotate(false)
	case ActionHold:
		err = g.hold(&evs)
	}
	return evs, err
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsGameOver reports whether the game has reached its terminal state.
func (g *GameState) IsGameOver() bool { return g.Phase == PhaseGameOver }

// GarbagePending returns the number of incoming garbage rows queued.
func (g *GameState) GarbagePending() int { return g.Garbage.Pending() }

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Saved is a complete value-copy of GameState for rollback.
// Saving and restoring are plain struct copies.
type Saved GameState

// Save returns a copy of the current state.
func (g *GameState) Save() Saved { return Saved(*g) }

// Restore replaces the state with a previously saved copy.
func (g *GameState) Restore(s Saved) { *g = GameState(s) }

// ---------------------------------------------------------------------------
// State hash
// ---------------------------------------------------------------------------

// StateHash returns a 64-bit FNV-1a hash of every field except the Frame
// counter. Two lockstep peers compare hashes to detect desyncs.
func (g *GameState) StateHash() uint64 {
	h := uint64(14695981039346656037) // FNV-1a offset basis
	const prime = uint64(1099511628211)
	mix := func(v uint64) {
		for i := 0; i < 8; i++ {
			h ^= v & 0xFF
			h *= prime
			v >>= 8
		}
	}
	flag := func(b bool) uint64 {
		if b {
			return 1
		}
		return 0
	}

	for r := range g.Board.Cells {
		for _, c := range g.Board.Cells[r] {
			h ^= uint64(c)
			h *= prime
		}
	}
	a := g.Active
	mix(uint64(a.Type) | uint64(a.Rotation)<<8 | uint64(uint8(a.Col))<<16 | uint64(uint8(a.Row))<<24 |
		uint64(a.Resets)<<32 | uint64(a.Item)<<40 | uint64(a.ItemCell)<<48)
	mix(uint64(a.LockTimer) | uint64(uint32(a.LowestRow))<<32)
	mix(uint64(g.Phase) | uint64(g.Hold)<<8 | uint64(g.Next.Len)<<16 | uint64(g.Reason)<<24 |
		flag(g.HoldUsed)<<32 | flag(g.SoftDrop)<<33)
	for _, p := range g.Next.Items[:g.Next.Len] {
		h ^= uint64(p)
		h *= prime
	}
	mix(uint64(g.Garbage.Len))
	for _, s := range g.Garbage.Specs[:g.Garbage.Len] {
		mix(uint64(s.Lines) | uint64(s.Hole)<<8)
	}

	st := g.Stats
	mix(st.Score)
	mix(uint64(st.Lines) | uint64(st.Combo)<<32)
	mix(uint64(st.Level) | uint64(st.FallInterval)<<32)
	mix(uint64(st.Pieces) | uint64(st.Quads)<<32)
	mix(uint64(st.GarbageSent))

	bag := &g.Bag
	mix(bag.RNG)
	mix(uint64(bag.Pos) | uint64(bag.Bags)<<32)
	for i := 0; i < NumPieceTypes; i++ {
		mix(uint64(bag.Bag[i]) | uint64(bag.Prev[i])<<8 | uint64(bag.Older[i])<<16)
	}

	r := g.Rules
	mix(uint64(r.Mode) | uint64(r.Difficulty)<<8 | flag(r.Competitive)<<16 | uint64(r.StartLevel)<<24 |
		uint64(r.Preview)<<32 | uint64(r.MaxLockResets)<<40 | uint64(r.LinesPerLevel)<<48 | uint64(r.ItemEvery)<<56)
	mix(uint64(r.LockDelayMs) | uint64(r.LineGoal)<<16 | uint64(r.TimeLimitMs)<<32)

	mix(g.Seed)
	mix(g.GarbageRNG)
	mix(g.RNG)
	mix(uint64(g.Gravity) | uint64(g.TimeLeft)<<32)
	mix(g.Elapsed)
	mix(uint64(g.Spawned))
	return h
}
