// internal/server/matches.go
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
	"github.com/jason-s-yu/stackfall/service/internal/database"
	"github.com/jason-s-yu/stackfall/service/internal/logging"
	"github.com/jason-s-yu/stackfall/service/internal/match"
)

type createReq struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type createResp struct {
	MatchID uuid.UUID `json:"matchId"`
	Mode    string    `json:"mode"`
	TickMs  int64     `json:"tickMs"`
}

type joinReq struct {
	PlayerID uuid.UUID `json:"playerId"`
}

type joinResp struct {
	MatchID  uuid.UUID `json:"matchId"`
	PlayerID uuid.UUID `json:"playerId"`
	Seat     int       `json:"seat"`
	Ticket   string    `json:"ticket"`
}

// decodeOptional decodes a JSON body into v; an empty body leaves v alone.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleCreate POST /matches
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	rules := s.opts.Rules
	if req.Mode != "" {
		mode, err := engine.ParseMode(strings.ToLower(req.Mode))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_mode")
			return
		}
		rules.Mode = mode
	}
	if req.Difficulty != "" {
		rules.Difficulty = engine.ParseDifficulty(strings.ToLower(req.Difficulty))
	}

	m := match.NewMatch(s.opts.Seed(), rules, s.opts.Tick)
	if s.opts.Journal != nil {
		m.Journal = s.opts.Journal
	}
	if s.opts.Results != nil {
		m.Results = s.opts.Results
	}
	h := newHub(m.ID)
	m.BroadcastFn = h.broadcast
	m.BroadcastToSeatFn = h.sendToSeat
	m.OnMatchEnd = func(id, winner uuid.UUID, scores map[uuid.UUID]uint64) {
		time.AfterFunc(s.opts.ResultTTL, func() { s.retire(id) })
	}

	s.mu.Lock()
	s.hubs[m.ID] = h
	s.mu.Unlock()
	s.matches.Add(m)
	logging.ForMatch(m.ID).WithField("mode", rules.Mode.String()).Info("match created")

	writeJSON(w, http.StatusCreated, createResp{MatchID: m.ID, Mode: rules.Mode.String(), TickMs: m.Tick.Milliseconds()})
}

// retire forgets a finished match and closes its sockets.
func (s *Server) retire(id uuid.UUID) {
	s.mu.Lock()
	h := s.hubs[id]
	delete(s.hubs, id)
	s.mu.Unlock()
	if h != nil {
		h.closeAll()
	}
	s.matches.Remove(id)
}

func (s *Server) hubFor(id uuid.UUID) *hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hubs[id]
}

// handleJoin POST /matches/{id}/join
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	m, ok := s.matchParam(w, r)
	if !ok {
		return
	}
	var req joinReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.PlayerID == uuid.Nil {
		req.PlayerID = uuid.New()
	}
	seat, err := m.Join(req.PlayerID)
	switch {
	case errors.Is(err, match.ErrMatchFull):
		writeError(w, http.StatusConflict, "match_full")
		return
	case errors.Is(err, match.ErrMatchOver):
		writeError(w, http.StatusConflict, "match_over")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "join_failed")
		return
	}
	ticket, err := s.opts.Issuer.Issue(m.ID, req.PlayerID, seat)
	if err != nil {
		logging.ForSeat(m.ID, seat, req.PlayerID).WithError(err).Error("issue ticket")
		writeError(w, http.StatusInternalServerError, "ticket_failed")
		return
	}
	writeJSON(w, http.StatusOK, joinResp{MatchID: m.ID, PlayerID: req.PlayerID, Seat: seat, Ticket: ticket})
}

// handleView GET /matches/{id}
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	m, ok := s.matchParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.View(-1))
}

// handleResult GET /matches/{id}/result
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if s.opts.Results == nil {
		writeError(w, http.StatusServiceUnavailable, "results_disabled")
		return
	}
	res, err := s.opts.Results.GetResult(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "result_not_found")
		return
	}
	if err != nil {
		logging.ForMatch(id).WithError(err).Error("load result")
		writeError(w, http.StatusInternalServerError, "result_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type replayResp struct {
	MatchID uuid.UUID          `json:"matchId"`
	Ticks   uint64             `json:"ticks"`
	Seats   []match.SeatReplay `json:"seats"`
}

// handleReplay GET /matches/{id}/replay
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if s.opts.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal_disabled")
		return
	}
	recs, err := s.opts.Journal.Read(r.Context(), id)
	if err != nil {
		logging.ForMatch(id).WithError(err).Error("read journal")
		writeError(w, http.StatusInternalServerError, "journal_failed")
		return
	}
	if len(recs) == 0 {
		writeError(w, http.StatusNotFound, "journal_not_found")
		return
	}
	rec, err := match.RecordingFromJournal(recs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "journal_incomplete")
		return
	}
	seats, err := rec.Replay()
	if err != nil {
		logging.ForMatch(id).WithError(err).Error("replay journal")
		writeError(w, http.StatusUnprocessableEntity, "replay_failed")
		return
	}
	writeJSON(w, http.StatusOK, replayResp{MatchID: id, Ticks: rec.Ticks, Seats: seats[:]})
}
