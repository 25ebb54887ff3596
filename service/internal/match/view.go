// internal/match/view.go
package match

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
)

// PieceJSON describes a piece on a board for clients.
type PieceJSON struct {
	Type     string          `json:"type"`
	Rotation uint8           `json:"rotation"`
	Cells    [4]engine.Point `json:"cells"` // visible-field coordinates; rows may be negative in the buffer
	Item     string          `json:"item,omitempty"`
	ItemCell uint8           `json:"itemCell,omitempty"`
}

// SeatView is one seat's board as seen by a particular observer. The next
// queue is only revealed to the seat's own player.
type SeatView struct {
	Seat           int         `json:"seat"`
	PlayerID       uuid.UUID   `json:"playerId"`
	Connected      bool        `json:"connected"`
	Phase          string      `json:"phase"`
	Rows           [][]uint8   `json:"rows"` // visible field, top to bottom
	Active         *PieceJSON  `json:"active,omitempty"`
	Ghost          *PieceJSON  `json:"ghost,omitempty"`
	Hold           string      `json:"hold,omitempty"`
	HoldUsed       bool        `json:"holdUsed"`
	Next           []string    `json:"next,omitempty"`
	Score          uint64      `json:"score"`
	Lines          uint32      `json:"lines"`
	Level          uint32      `json:"level"`
	Combo          uint32      `json:"combo"`
	GarbagePending int         `json:"garbagePending"`
	TimeLeftMs     uint32      `json:"timeLeftMs,omitempty"`
	Reason         string      `json:"reason,omitempty"`
}

// MatchView is the overall match state for one observer.
type MatchView struct {
	MatchID uuid.UUID  `json:"matchId"`
	Mode    string     `json:"mode"`
	Started bool       `json:"started"`
	Over    bool       `json:"over"`
	Tick    uint64     `json:"tick"`
	Winner  *int       `json:"winner,omitempty"`
	Seats   []SeatView `json:"seats"`
}

func pieceJSON(v engine.PieceView) *PieceJSON {
	if v.Type == engine.PieceNone {
		return nil
	}
	p := &PieceJSON{
		Type:     v.Type.String(),
		Rotation: v.Rotation,
		Cells:    v.Cells,
	}
	for i := range p.Cells {
		p.Cells[i].Row -= engine.BufferZone
	}
	if v.Item != engine.ItemNone {
		p.Item = v.Item.String()
		p.ItemCell = v.ItemCell
	}
	return p
}

// seatView builds the view of seat for the observer seat forSeat (-1 for a
// spectator). Assumes lock is held by caller.
func (m *Match) seatView(seat, forSeat int) SeatView {
	s := &m.Seats[seat]
	snap := s.Engine.Snapshot()
	v := SeatView{
		Seat:           seat,
		PlayerID:       s.PlayerID,
		Connected:      s.Connected,
		Phase:          snap.Phase.String(),
		Active:         pieceJSON(snap.Active),
		Ghost:          pieceJSON(snap.Ghost),
		HoldUsed:       snap.HoldUsed,
		Score:          snap.Score,
		Lines:          snap.Lines,
		Level:          snap.Level,
		Combo:          snap.Combo,
		GarbagePending: snap.GarbagePending,
		TimeLeftMs:     snap.TimeLeftMs,
	}
	if snap.Hold != engine.PieceNone {
		v.Hold = snap.Hold.String()
	}
	if snap.Reason != engine.ReasonNone {
		v.Reason = snap.Reason.String()
	}
	visible := snap.VisibleRows()
	v.Rows = make([][]uint8, len(visible))
	for r, row := range visible {
		v.Rows[r] = make([]uint8, len(row))
		for c, cell := range row {
			v.Rows[r][c] = uint8(cell)
		}
	}
	if seat == forSeat {
		for i := 0; i < int(snap.NextLen); i++ {
			v.Next = append(v.Next, snap.Next[i].String())
		}
	}
	return v
}

// View returns the match as seen by forSeat (-1 for a spectator).
func (m *Match) View(forSeat int) MatchView {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.view(forSeat)
}

// view assumes lock is held by caller.
func (m *Match) view(forSeat int) MatchView {
	mv := MatchView{
		MatchID: m.ID,
		Mode:    m.Rules.Mode.String(),
		Started: m.Started,
		Over:    m.Over,
		Tick:    m.TickIndex,
		Seats:   make([]SeatView, 0, SeatCount),
	}
	if m.Over && m.winner >= 0 {
		mv.Winner = seatPtr(m.winner)
	}
	for i := 0; i < SeatCount; i++ {
		if m.Seats[i].PlayerID == uuid.Nil {
			continue
		}
		mv.Seats = append(mv.Seats, m.seatView(i, forSeat))
	}
	return mv
}
