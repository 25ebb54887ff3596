// internal/match/events.go
package match

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
)

// EventType names a message sent to seat and spectator connections.
type EventType string

// Constants defining the match events sent over WebSockets.
const (
	EventMatchStart     EventType = "match_start"        // Public: both seats filled, simulation running.
	EventSeatState      EventType = "seat_state"         // Public: a seat's board changed this tick.
	EventPrivateSync    EventType = "private_sync_state" // Private: full view for one seat.
	EventPieceLocked    EventType = "piece_locked"       // Public: a piece merged into a board.
	EventLinesCleared   EventType = "lines_cleared"      // Public: rows cleared by one lock.
	EventGarbageSent    EventType = "garbage_sent"       // Public: attack routed to the opponent.
	EventGarbageApplied EventType = "garbage_applied"    // Public: queued garbage rose into a board.
	EventItemTriggered  EventType = "item_triggered"     // Public: an item effect fired.
	EventSeatOver       EventType = "seat_game_over"     // Public: one seat topped out or finished.
	EventSeatConnection EventType = "seat_connection"    // Public: a seat connected or dropped.
	EventInputRejected  EventType = "input_rejected"     // Private: an input message could not be used.
	EventMatchEnd       EventType = "match_end"          // Public: final result.
)

// Event is the JSON message broadcast for match activity.
type Event struct {
	Type    EventType              `json:"type"`
	Seat    *int                   `json:"seat,omitempty"`
	Tick    uint64                 `json:"tick"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *SeatView              `json:"state,omitempty"`
	Match   *MatchView             `json:"match,omitempty"`
}

// OnMatchEndFunc is called once when a match finishes. winner is uuid.Nil
// for a draw.
type OnMatchEndFunc func(matchID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]uint64)

func seatPtr(seat int) *int { return &seat }

// translate converts engine events of one seat into match events. Garbage
// pushes are reported by the router once delivered, not here.
func translate(seat int, tick uint64, evs []engine.Event) []Event {
	var out []Event
	for _, ev := range evs {
		e := Event{Seat: seatPtr(seat), Tick: tick}
		switch ev.Type {
		case engine.EventLocked:
			e.Type = EventPieceLocked
			e.Payload = map[string]interface{}{"piece": ev.Piece.String()}
		case engine.EventLinesCleared:
			e.Type = EventLinesCleared
			e.Payload = map[string]interface{}{"piece": ev.Piece.String(), "lines": ev.Lines}
		case engine.EventGarbageApplied:
			e.Type = EventGarbageApplied
			e.Payload = map[string]interface{}{"lines": ev.Lines}
		case engine.EventItemTriggered:
			e.Type = EventItemTriggered
			e.Payload = map[string]interface{}{"item": ev.Item.String()}
		case engine.EventGameOver:
			e.Type = EventSeatOver
			e.Payload = map[string]interface{}{"reason": ev.Reason.String()}
		default:
			continue
		}
		out = append(out, e)
	}
	return out
}
