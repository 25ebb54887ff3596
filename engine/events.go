package engine

// EventType identifies what an Event reports.
type EventType uint8

const (
	EventLocked         EventType = iota // 0: a piece merged into the board
	EventLinesCleared                    // 1: Lines rows removed by one lock
	EventGarbagePushed                   // 2: Garbage must be delivered to the opponent
	EventGarbageApplied                  // 3: Lines incoming garbage rows inserted
	EventItemTriggered                   // 4: Item effect applied on lock
	EventGameOver                        // 5: terminal; Reason says why
)

var eventNames = [...]string{
	"locked",
	"lines_cleared",
	"garbage_pushed",
	"garbage_applied",
	"item_triggered",
	"game_over",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is emitted by Advance and ApplyInput for rendering and network
// collaborators. Only the fields relevant to Type are set.
type Event struct {
	Type    EventType
	Piece   PieceType
	Lines   uint8
	Garbage GarbageSpec
	Item    ItemKind
	Reason  GameOverReason
}

func emit(evs *[]Event, ev Event) {
	*evs = append(*evs, ev)
}

// gameOver moves the engine into its terminal state.
func (g *GameState) gameOver(reason GameOverReason, evs *[]Event) {
	g.Phase = PhaseGameOver
	g.Reason = reason
	emit(evs, Event{Type: EventGameOver, Reason: reason})
}
