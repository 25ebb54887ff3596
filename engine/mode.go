package engine

import "fmt"

// Mode selects the rule variation layered on the core engine.
type Mode uint8

const (
	ModeNormal     Mode = iota // 0
	ModeItem                   // 1: some pieces carry an item cell
	ModeTimeAttack             // 2: countdown clock, optional line goal
)

var modeNames = [...]string{"normal", "item", "time_attack"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return ModeNormal, fmt.Errorf("unknown mode %q", s)
}

// PostLockHook runs after a piece merges and before full rows are cleared.
type PostLockHook func(g *GameState, p *ActivePiece, evs *[]Event)

// PostLock returns the hook for this mode, or nil when the mode adds none.
func (m Mode) PostLock() PostLockHook {
	switch m {
	case ModeItem:
		return itemHook
	}
	return nil
}

// itemHook applies the effect of the item carried by a locked piece.
func itemHook(g *GameState, p *ActivePiece, evs *[]Event) {
	if p.Item == ItemNone {
		return
	}
	cell := p.Cells()[p.ItemCell&3]
	switch p.Item {
	case ItemClearRow:
		g.Board.ClearRow(cell.Row)
	case ItemClearColumn:
		g.Board.ClearColumn(cell.Col)
	case ItemBomb:
		g.Board.ClearArea(cell.Col, cell.Row, 1)
	}
	emit(evs, Event{Type: EventItemTriggered, Piece: p.Type, Item: p.Item})
}

// maybeAttachItem marks every ItemEvery-th queued piece with a random item
// on a random cell. Held pieces lose their item.
func (g *GameState) maybeAttachItem() {
	if g.Rules.Mode != ModeItem || g.Spawned%g.Rules.itemEvery() != 0 {
		return
	}
	g.Active.Item = ItemKind(1 + randN(&g.RNG, numItemKinds))
	g.Active.ItemCell = uint8(randN(&g.RNG, 4))
}

// tickClock runs the time attack countdown. It reports true when the clock
// expired and the game ended.
func (g *GameState) tickClock(dt uint32, evs *[]Event) bool {
	if g.Rules.Mode != ModeTimeAttack {
		return false
	}
	if dt >= g.TimeLeft {
		g.TimeLeft = 0
		g.gameOver(ReasonTimeExpired, evs)
		return true
	}
	g.TimeLeft -= dt
	return false
}

// goalReached reports whether a time attack line goal has been met.
func (g *GameState) goalReached() bool {
	return g.Rules.Mode == ModeTimeAttack && g.Rules.LineGoal > 0 &&
		g.Stats.Lines >= uint32(g.Rules.LineGoal)
}
