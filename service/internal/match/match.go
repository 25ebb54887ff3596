// internal/match/match.go
package match

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/stackfall/engine"
	"github.com/jason-s-yu/stackfall/service/internal/cache"
	"github.com/jason-s-yu/stackfall/service/internal/database"
	"github.com/jason-s-yu/stackfall/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// SeatCount is the number of players in a versus match.
const SeatCount = 2

// maxQueuedInputs bounds the inputs a seat may queue between two ticks.
const maxQueuedInputs = 64

var (
	ErrMatchFull  = errors.New("match is full")
	ErrNoSuchSeat = errors.New("no such seat")
	ErrSeatsOpen  = errors.New("match has open seats")
	ErrNotStarted = errors.New("match not started")
	ErrMatchOver  = errors.New("match is over")
	ErrInputFlood = errors.New("too many queued inputs")
)

// Journal receives match records for replay and audit. *cache.Journal
// satisfies it.
type Journal interface {
	Append(ctx context.Context, rec cache.MatchRecord) error
}

// ResultRecorder stores final results. *database.Store satisfies it.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r database.MatchResult) error
}

// Seat is one player's side of a match.
type Seat struct {
	PlayerID  uuid.UUID
	Engine    engine.GameState
	Connected bool
	Frames    []engine.Frame // every frame stepped, for replay verification

	inputs []engine.Action      // arrived since the last tick, in order
	inbox  []engine.GarbageSpec // routed from the opponent, delivered next tick
	last   engine.Snapshot      // last broadcast state, Frame zeroed
}

// Match hosts two engines driven by one fixed-step clock. All fields are
// guarded by Mu.
type Match struct {
	ID        uuid.UUID
	Seed      uint64
	Rules     engine.Rules
	Tick      time.Duration
	Seats     [SeatCount]Seat
	Started   bool
	Over      bool
	TickIndex uint64
	CreatedAt time.Time
	StartedAt time.Time
	EndReason string

	Mu sync.Mutex

	// Callbacks supplied by the transport layer.
	BroadcastFn       func(ev Event)
	BroadcastToSeatFn func(seat int, ev Event)
	OnMatchEnd        OnMatchEndFunc

	Journal Journal        // nil disables the journal
	Results ResultRecorder // nil disables result persistence

	winner      int
	recordIndex int
	inflight    sync.WaitGroup
	log         *logrus.Entry
}

// NewMatch creates a match whose seats both play from seed under rules.
func NewMatch(seed uint64, rules engine.Rules, tick time.Duration) *Match {
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}
	id := uuid.New()
	m := &Match{
		ID:        id,
		Seed:      seed,
		Rules:     rules,
		Tick:      tick,
		CreatedAt: time.Now(),
		winner:    -1,
		log:       logging.ForMatch(id),
	}
	for i := range m.Seats {
		m.Seats[i].Engine = engine.NewGame(seed, rules)
	}
	return m
}

// tickMs is the simulated time of one tick.
func (m *Match) tickMs() uint32 {
	ms := uint32(m.Tick / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	return ms
}

// Join seats playerID and returns the seat index. Joining twice returns the
// seat already held.
func (m *Match) Join(playerID uuid.UUID) (int, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if seat := m.seatOf(playerID); seat >= 0 {
		return seat, nil
	}
	if m.Over {
		return -1, ErrMatchOver
	}
	for i := range m.Seats {
		if m.Seats[i].PlayerID == uuid.Nil {
			m.Seats[i].PlayerID = playerID
			logging.ForSeat(m.ID, i, playerID).Info("player joined")
			m.record(i, "join", map[string]interface{}{"player": playerID.String()})
			return i, nil
		}
	}
	return -1, ErrMatchFull
}

// SeatOf returns the seat held by playerID, or -1.
func (m *Match) SeatOf(playerID uuid.UUID) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.seatOf(playerID)
}

func (m *Match) seatOf(playerID uuid.UUID) int {
	if playerID == uuid.Nil {
		return -1
	}
	for i := range m.Seats {
		if m.Seats[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Ready reports whether both seats are taken and connected.
func (m *Match) Ready() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	for i := range m.Seats {
		if m.Seats[i].PlayerID == uuid.Nil || !m.Seats[i].Connected {
			return false
		}
	}
	return true
}

// Start begins the simulation. The caller drives it with Run or Advance.
// Starting a started match is a no-op.
func (m *Match) Start() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Started {
		return nil
	}
	if m.Over {
		return ErrMatchOver
	}
	for i := range m.Seats {
		if m.Seats[i].PlayerID == uuid.Nil {
			return ErrSeatsOpen
		}
	}
	m.Started = true
	m.StartedAt = time.Now()
	m.log.WithFields(logrus.Fields{"seed": m.Seed, "mode": m.Rules.Mode.String()}).Info("match started")

	m.record(-1, cache.KindStart, map[string]interface{}{
		"seed":    strconv.FormatUint(m.Seed, 10),
		"rules":   m.Rules,
		"tick_ms": m.tickMs(),
	})
	view := m.view(-1)
	m.fireEvent(Event{Type: EventMatchStart, Match: &view})
	for i := range m.Seats {
		m.sendSyncState(i)
	}
	return nil
}

// Run advances the match once per Tick until it ends or ctx is cancelled.
// Cancellation aborts an unfinished match.
func (m *Match) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Stop("aborted")
			return
		case <-ticker.C:
			if !m.Advance() {
				return
			}
		}
	}
}

// Advance runs one tick and reports whether the match is still in play.
func (m *Match) Advance() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.step()
	return m.Started && !m.Over
}

// step runs one tick on both seats: queued garbage and inputs are packed
// into a frame, stepped, and the resulting attacks routed to the opponent
// for the next tick. Assumes lock is held by caller.
func (m *Match) step() {
	if !m.Started || m.Over {
		return
	}
	m.TickIndex++
	dt := m.tickMs()

	var outbox [SeatCount][]engine.GarbageSpec
	for i := range m.Seats {
		s := &m.Seats[i]
		if s.Engine.IsGameOver() {
			s.inputs, s.inbox = nil, nil
			continue
		}
		f := engine.Frame{DtMs: dt, Garbage: s.inbox, Inputs: s.inputs}
		s.inputs, s.inbox = nil, nil

		evs, err := s.Engine.Step(f)
		s.Frames = append(s.Frames, f)
		if !f.Empty() {
			m.record(i, "frame", framePayload(f))
		}
		if err != nil && !errors.Is(err, engine.ErrEngineHalted) {
			logging.ForSeat(m.ID, i, s.PlayerID).WithError(err).Error("engine step failed")
		}

		for _, ev := range evs {
			if ev.Type != engine.EventGarbagePushed {
				continue
			}
			target := SeatCount - 1 - i
			if m.Seats[target].Engine.IsGameOver() {
				continue
			}
			outbox[target] = append(outbox[target], ev.Garbage)
			m.fireEvent(Event{
				Type: EventGarbageSent,
				Seat: seatPtr(target),
				Tick: m.TickIndex,
				Payload: map[string]interface{}{
					"from":  i,
					"lines": ev.Garbage.Lines,
					"hole":  ev.Garbage.Hole,
				},
			})
		}
		for _, ev := range translate(i, m.TickIndex, evs) {
			m.fireEvent(ev)
		}
		m.broadcastSeatIfChanged(i)
	}
	for i := range outbox {
		m.Seats[i].inbox = append(m.Seats[i].inbox, outbox[i]...)
	}

	if m.Seats[0].Engine.IsGameOver() || m.Seats[1].Engine.IsGameOver() {
		m.end(m.decideWinner(), "game_over")
	}
}

// standing ranks a seat for deciding the winner: reaching the line goal
// beats still playing, which beats topping out or running out of time.
func standing(g *engine.GameState) int {
	switch {
	case g.Reason == engine.ReasonGoalReached:
		return 2
	case !g.IsGameOver():
		return 1
	default:
		return 0
	}
}

// decideWinner returns the winning seat, or -1 for a draw. Seats finishing
// on the same tick with the same standing are split by score.
// Assumes lock is held by caller.
func (m *Match) decideWinner() int {
	a, b := &m.Seats[0].Engine, &m.Seats[1].Engine
	sa, sb := standing(a), standing(b)
	switch {
	case sa > sb:
		return 0
	case sb > sa:
		return 1
	case a.Stats.Score > b.Stats.Score:
		return 0
	case b.Stats.Score > a.Stats.Score:
		return 1
	default:
		return -1
	}
}

// broadcastSeatIfChanged publishes a seat's board when it differs from the
// last one published. Assumes lock is held by caller.
func (m *Match) broadcastSeatIfChanged(seat int) {
	s := &m.Seats[seat]
	snap := s.Engine.Snapshot()
	snap.Frame = 0
	if snap == s.last {
		return
	}
	s.last = snap
	public := m.seatView(seat, -1)
	m.fireEvent(Event{Type: EventSeatState, Seat: seatPtr(seat), Tick: m.TickIndex, State: &public})
	private := m.seatView(seat, seat)
	m.fireEventToSeat(seat, Event{Type: EventSeatState, Seat: seatPtr(seat), Tick: m.TickIndex, State: &private})
}

// SubmitInput queues an action for seat; it is applied on the next tick.
func (m *Match) SubmitInput(seat int, a engine.Action) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if seat < 0 || seat >= SeatCount {
		return fmt.Errorf("seat %d: %w", seat, ErrNoSuchSeat)
	}
	if a >= engine.NumActions {
		return fmt.Errorf("action %d: %w", a, engine.ErrUnknownAction)
	}
	if !m.Started {
		return ErrNotStarted
	}
	if m.Over {
		return ErrMatchOver
	}
	s := &m.Seats[seat]
	if s.Engine.IsGameOver() {
		return engine.ErrEngineHalted
	}
	if len(s.inputs) >= maxQueuedInputs {
		return ErrInputFlood
	}
	s.inputs = append(s.inputs, a)
	return nil
}

// HandleConnect marks seat connected and sends it the full current state.
func (m *Match) HandleConnect(seat int) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if seat < 0 || seat >= SeatCount || m.Seats[seat].PlayerID == uuid.Nil {
		return fmt.Errorf("seat %d: %w", seat, ErrNoSuchSeat)
	}
	s := &m.Seats[seat]
	if s.Connected {
		logging.ForSeat(m.ID, seat, s.PlayerID).Warn("seat connected twice")
	}
	s.Connected = true
	m.record(seat, "connect", nil)
	m.fireEvent(Event{
		Type:    EventSeatConnection,
		Seat:    seatPtr(seat),
		Tick:    m.TickIndex,
		Payload: map[string]interface{}{"connected": true},
	})
	m.sendSyncState(seat)
	return nil
}

// HandleDisconnect marks seat disconnected. A seat leaving a running match
// forfeits it.
func (m *Match) HandleDisconnect(seat int) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if seat < 0 || seat >= SeatCount {
		return
	}
	s := &m.Seats[seat]
	if !s.Connected {
		return
	}
	s.Connected = false
	logging.ForSeat(m.ID, seat, s.PlayerID).Info("seat disconnected")
	m.record(seat, "disconnect", nil)
	m.fireEvent(Event{
		Type:    EventSeatConnection,
		Seat:    seatPtr(seat),
		Tick:    m.TickIndex,
		Payload: map[string]interface{}{"connected": false},
	})
	if m.Started && !m.Over {
		m.end(SeatCount-1-seat, "forfeit")
	}
}

// Stop ends an unfinished match without a winner. No result is stored.
func (m *Match) Stop(reason string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Over {
		return
	}
	m.Over = true
	m.EndReason = reason
	m.log.WithField("reason", reason).Warn("match stopped")
	m.record(-1, "stop", map[string]interface{}{"reason": reason})
	view := m.view(-1)
	m.fireEvent(Event{Type: EventMatchEnd, Tick: m.TickIndex, Match: &view, Payload: map[string]interface{}{"reason": reason}})
}

// Winner returns the winning seat, or -1 for a draw or an unfinished match.
func (m *Match) Winner() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if !m.Over {
		return -1
	}
	return m.winner
}

// end finishes the match. Assumes lock is held by caller.
func (m *Match) end(winner int, reason string) {
	if m.Over {
		return
	}
	m.Over = true
	m.winner = winner
	m.EndReason = reason

	scores := make(map[uuid.UUID]uint64, SeatCount)
	for i := range m.Seats {
		scores[m.Seats[i].PlayerID] = m.Seats[i].Engine.Stats.Score
	}
	winnerID := uuid.Nil
	if winner >= 0 {
		winnerID = m.Seats[winner].PlayerID
	}
	m.log.WithFields(logrus.Fields{"winner": winner, "reason": reason, "ticks": m.TickIndex}).Info("match ended")

	m.record(-1, "end", map[string]interface{}{"winner": winner, "reason": reason})
	view := m.view(-1)
	m.fireEvent(Event{Type: EventMatchEnd, Tick: m.TickIndex, Match: &view, Payload: map[string]interface{}{"reason": reason}})

	if m.OnMatchEnd != nil {
		m.OnMatchEnd(m.ID, winnerID, scores)
	}
	m.persistResult(winnerID)
}

// result builds the stored result from the current state.
// Assumes lock is held by caller.
func (m *Match) result(winnerID uuid.UUID) database.MatchResult {
	r := database.MatchResult{
		MatchID: m.ID,
		Seed:    m.Seed,
		Mode:    m.Rules.Mode.String(),
		Winner:  winnerID,
		Ticks:   m.TickIndex,
		EndedAt: time.Now().UTC(),
	}
	if !m.StartedAt.IsZero() {
		r.DurationMs = time.Since(m.StartedAt).Milliseconds()
	}
	for i := range m.Seats {
		g := &m.Seats[i].Engine
		r.Seats[i] = database.SeatResult{
			PlayerID:    m.Seats[i].PlayerID,
			Score:       g.Stats.Score,
			Lines:       g.Stats.Lines,
			Level:       g.Stats.Level,
			Pieces:      g.Stats.Pieces,
			GarbageSent: g.Stats.GarbageSent,
			Reason:      g.Reason.String(),
			StateHash:   fmt.Sprintf("%016x", g.StateHash()),
		}
	}
	return r
}

// persistResult stores the result in the background.
// Assumes lock is held by caller.
func (m *Match) persistResult(winnerID uuid.UUID) {
	if m.Results == nil {
		return
	}
	r := m.result(winnerID)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Results.RecordResult(ctx, r); err != nil {
			m.log.WithError(err).Error("failed to record result")
		}
	}()
}

// record appends a journal entry in the background. seat is -1 for match
// lifecycle records. Assumes lock is held by caller.
func (m *Match) record(seat int, kind string, payload map[string]interface{}) {
	if m.Journal == nil {
		return
	}
	m.recordIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.MatchRecord{
		MatchID:   m.ID,
		Index:     m.recordIndex,
		Tick:      m.TickIndex,
		Seat:      seat,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	m.inflight.Add(1)
	go func(rec cache.MatchRecord) {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.Journal.Append(ctx, rec); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{"index": rec.Index, "kind": rec.Kind}).Error("journal append failed")
		}
	}(rec)
}

// Flush waits for background journal and result writes to finish.
func (m *Match) Flush() { m.inflight.Wait() }

// VerifyReplay re-simulates seat's recorded frames from the seed and
// reports whether the result matches the live engine.
func (m *Match) VerifyReplay(seat int) (bool, error) {
	m.Mu.Lock()
	if seat < 0 || seat >= SeatCount {
		m.Mu.Unlock()
		return false, fmt.Errorf("seat %d: %w", seat, ErrNoSuchSeat)
	}
	frames := append([]engine.Frame(nil), m.Seats[seat].Frames...)
	want := m.Seats[seat].Engine.StateHash()
	seed, rules := m.Seed, m.Rules
	m.Mu.Unlock()

	g, _, err := engine.Replay(seed, rules, frames)
	if err != nil {
		return false, err
	}
	return g.StateHash() == want, nil
}

// Sync resends seat the full match view.
func (m *Match) Sync(seat int) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if seat < 0 || seat >= SeatCount {
		return
	}
	m.sendSyncState(seat)
}

// sendSyncState sends seat the full match view with its own next queue.
// Assumes lock is held by caller.
func (m *Match) sendSyncState(seat int) {
	view := m.view(seat)
	m.fireEventToSeat(seat, Event{Type: EventPrivateSync, Seat: seatPtr(seat), Tick: m.TickIndex, Match: &view})
}

// fireEvent broadcasts to every connection. Assumes lock is held by caller.
func (m *Match) fireEvent(ev Event) {
	if m.BroadcastFn == nil {
		m.log.WithField("event", ev.Type).Debug("no broadcaster, event dropped")
		return
	}
	m.BroadcastFn(ev)
}

// fireEventToSeat sends to one seat if it is connected.
// Assumes lock is held by caller.
func (m *Match) fireEventToSeat(seat int, ev Event) {
	if m.BroadcastToSeatFn == nil {
		m.log.WithField("event", ev.Type).Debug("no seat broadcaster, event dropped")
		return
	}
	if !m.Seats[seat].Connected {
		return
	}
	m.BroadcastToSeatFn(seat, ev)
}

// RejectInput tells seat why an input message was not used.
func (m *Match) RejectInput(seat int, reason string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if seat < 0 || seat >= SeatCount {
		return
	}
	m.fireEventToSeat(seat, Event{
		Type:    EventInputRejected,
		Seat:    seatPtr(seat),
		Tick:    m.TickIndex,
		Payload: map[string]interface{}{"reason": reason},
	})
}

func framePayload(f engine.Frame) map[string]interface{} {
	p := map[string]interface{}{"dt": f.DtMs}
	if len(f.Garbage) > 0 {
		p["garbage"] = f.Garbage
	}
	if len(f.Inputs) > 0 {
		names := make([]string, len(f.Inputs))
		for i, a := range f.Inputs {
			names[i] = a.String()
		}
		p["inputs"] = names
	}
	return p
}
