// internal/match/recording.go
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jason-s-yu/stackfall/engine"
	"github.com/jason-s-yu/stackfall/service/internal/cache"
)

// ErrNoStartRecord is returned when a journal lacks its start marker.
var ErrNoStartRecord = errors.New("journal has no start record")

// Recording is a match rebuilt from its journal. Empty frames are not
// journaled; they are restored from the tick length.
type Recording struct {
	Seed   uint64
	Rules  engine.Rules
	TickMs uint32
	Ticks  uint64
	Frames [SeatCount][]engine.Frame
}

// SeatReplay is the outcome of replaying one seat.
type SeatReplay struct {
	Seat      int    `json:"seat"`
	Score     uint64 `json:"score"`
	Lines     uint32 `json:"lines"`
	Reason    string `json:"reason"`
	StateHash string `json:"stateHash"`
}

type startPayload struct {
	Seed   string       `json:"seed"`
	Rules  engine.Rules `json:"rules"`
	TickMs uint32       `json:"tick_ms"`
}

type framePayloadJSON struct {
	Dt      uint32               `json:"dt"`
	Garbage []engine.GarbageSpec `json:"garbage"`
	Inputs  []string             `json:"inputs"`
}

// decodePayload converts a record payload, either freshly built or read
// back from redis, into v.
func decodePayload(p map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// RecordingFromJournal rebuilds both seats' frame logs from journal records
// in index order.
func RecordingFromJournal(recs []cache.MatchRecord) (Recording, error) {
	var rec Recording
	started := false
	type tickFrame struct {
		tick  uint64
		frame engine.Frame
	}
	var recorded [SeatCount][]tickFrame

	for _, r := range recs {
		if r.Tick > rec.Ticks {
			rec.Ticks = r.Tick
		}
		switch r.Kind {
		case cache.KindStart:
			var sp startPayload
			if err := decodePayload(r.Payload, &sp); err != nil {
				return Recording{}, fmt.Errorf("start record: %w", err)
			}
			seed, err := strconv.ParseUint(sp.Seed, 10, 64)
			if err != nil {
				return Recording{}, fmt.Errorf("start record seed: %w", err)
			}
			rec.Seed, rec.Rules, rec.TickMs = seed, sp.Rules, sp.TickMs
			started = true
		case "frame":
			if r.Seat < 0 || r.Seat >= SeatCount {
				return Recording{}, fmt.Errorf("record %d: seat %d: %w", r.Index, r.Seat, ErrNoSuchSeat)
			}
			var fp framePayloadJSON
			if err := decodePayload(r.Payload, &fp); err != nil {
				return Recording{}, fmt.Errorf("record %d: %w", r.Index, err)
			}
			f := engine.Frame{DtMs: fp.Dt, Garbage: fp.Garbage}
			for _, name := range fp.Inputs {
				a, err := engine.ParseAction(name)
				if err != nil {
					return Recording{}, fmt.Errorf("record %d: %w", r.Index, err)
				}
				f.Inputs = append(f.Inputs, a)
			}
			recorded[r.Seat] = append(recorded[r.Seat], tickFrame{tick: r.Tick, frame: f})
		}
	}
	if !started {
		return Recording{}, ErrNoStartRecord
	}

	for seat := range recorded {
		frames := make([]engine.Frame, rec.Ticks)
		for i := range frames {
			frames[i].DtMs = rec.TickMs
		}
		for _, tf := range recorded[seat] {
			if tf.tick == 0 || tf.tick > rec.Ticks {
				return Recording{}, fmt.Errorf("frame at tick %d outside match", tf.tick)
			}
			frames[tf.tick-1] = tf.frame
		}
		rec.Frames[seat] = frames
	}
	return rec, nil
}

// Replay re-simulates every seat of the recording.
func (r *Recording) Replay() ([SeatCount]SeatReplay, error) {
	var out [SeatCount]SeatReplay
	for seat := range r.Frames {
		g, _, err := engine.Replay(r.Seed, r.Rules, r.Frames[seat])
		if err != nil {
			return out, fmt.Errorf("seat %d: %w", seat, err)
		}
		out[seat] = SeatReplay{
			Seat:      seat,
			Score:     g.Stats.Score,
			Lines:     g.Stats.Lines,
			Reason:    g.Reason.String(),
			StateHash: fmt.Sprintf("%016x", g.StateHash()),
		}
	}
	return out, nil
}
