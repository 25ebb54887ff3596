// internal/server/socket.go
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
	"github.com/jason-s-yu/stackfall/service/internal/auth"
	"github.com/jason-s-yu/stackfall/service/internal/logging"
	"github.com/jason-s-yu/stackfall/service/internal/match"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	spectator    = -1
)

// inbound is a message read from a seat socket.
type inbound struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
}

// client is one socket. Events are queued on send and written by its own
// goroutine so a slow peer never blocks the match.
type client struct {
	conn *websocket.Conn
	seat int
	send chan match.Event
}

func (c *client) writeLoop(ctx context.Context) {
	for ev := range c.send {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(wctx, c.conn, ev)
		cancel()
		if err != nil {
			c.conn.CloseNow()
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "match closed")
}

// hub fans match events out to the sockets of one match.
type hub struct {
	matchID uuid.UUID
	mu      sync.Mutex
	clients map[*client]struct{}
	start   sync.Once
}

func newHub(matchID uuid.UUID) *hub {
	return &hub{matchID: matchID, clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// remove drops c and closes its queue. Safe to call twice.
func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// enqueue assumes h.mu is held.
func (h *hub) enqueue(c *client, ev match.Event) {
	select {
	case c.send <- ev:
	default:
		logrus.WithFields(logrus.Fields{"match": h.matchID.String(), "seat": c.seat, "event": ev.Type}).
			Warn("client send buffer full, event dropped")
	}
}

// broadcast is the match's BroadcastFn.
func (h *hub) broadcast(ev match.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueue(c, ev)
	}
}

// sendToSeat is the match's BroadcastToSeatFn.
func (h *hub) sendToSeat(seat int, ev match.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.seat == seat {
			h.enqueue(c, ev)
		}
	}
}

// handleSeatSocket GET /matches/{id}/ws?ticket=
func (s *Server) handleSeatSocket(w http.ResponseWriter, r *http.Request) {
	m, ok := s.matchParam(w, r)
	if !ok {
		return
	}
	tk, err := s.opts.Issuer.Verify(r.URL.Query().Get("ticket"))
	if err != nil || tk.MatchID != m.ID {
		writeError(w, http.StatusUnauthorized, "bad_ticket")
		return
	}
	if m.SeatOf(tk.PlayerID) != tk.Seat {
		writeError(w, http.StatusForbidden, "seat_mismatch")
		return
	}
	h := s.hubFor(m.ID)
	if h == nil {
		writeError(w, http.StatusGone, "match_closed")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.ForSeat(m.ID, tk.Seat, tk.PlayerID).WithError(err).Warn("websocket accept")
		return
	}
	log := logging.ForSeat(m.ID, tk.Seat, tk.PlayerID)
	ctx := r.Context()

	c := &client{conn: conn, seat: tk.Seat, send: make(chan match.Event, sendBuffer)}
	h.add(c)
	go c.writeLoop(ctx)
	defer func() {
		h.remove(c)
		m.HandleDisconnect(tk.Seat)
	}()

	if err := m.HandleConnect(tk.Seat); err != nil {
		log.WithError(err).Warn("connect seat")
		return
	}
	log.Info("seat socket open")
	if m.Ready() {
		h.start.Do(func() { s.startMatch(m) })
	}

	s.readSeat(ctx, m, tk, conn, log)
}

// startMatch starts m and runs its loop until it ends or the server closes.
func (s *Server) startMatch(m *match.Match) {
	if err := m.Start(); err != nil {
		logging.ForMatch(m.ID).WithError(err).Error("start match")
		return
	}
	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		m.Run(s.ctx)
	}()
}

// readSeat reads input messages until the socket closes.
func (s *Server) readSeat(ctx context.Context, m *match.Match, tk auth.Ticket, conn *websocket.Conn, log *logrus.Entry) {
	for {
		var msg inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.WithError(err).Debug("seat read ended")
			}
			return
		}
		switch msg.Type {
		case "input":
			a, err := engine.ParseAction(msg.Action)
			if err != nil {
				m.RejectInput(tk.Seat, err.Error())
				continue
			}
			if err := m.SubmitInput(tk.Seat, a); err != nil {
				m.RejectInput(tk.Seat, err.Error())
			}
		case "sync":
			m.Sync(tk.Seat)
		default:
			m.RejectInput(tk.Seat, "unknown message type "+msg.Type)
		}
	}
}

// handleWatchSocket GET /matches/{id}/watch
func (s *Server) handleWatchSocket(w http.ResponseWriter, r *http.Request) {
	m, ok := s.matchParam(w, r)
	if !ok {
		return
	}
	h := s.hubFor(m.ID)
	if h == nil {
		writeError(w, http.StatusGone, "match_closed")
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.ForMatch(m.ID).WithError(err).Warn("websocket accept")
		return
	}

	// Spectators only listen; CloseRead handles control frames.
	ctx := conn.CloseRead(r.Context())
	c := &client{conn: conn, seat: spectator, send: make(chan match.Event, sendBuffer)}
	view := m.View(spectator)
	c.send <- match.Event{Type: match.EventPrivateSync, Tick: view.Tick, Match: &view}
	h.add(c)
	go c.writeLoop(ctx)

	<-ctx.Done()
	h.remove(c)
}
