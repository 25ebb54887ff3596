package engine

import (
	"errors"
	"fmt"
)

// Frame is one driver tick: garbage received from the opponent since the
// previous tick, then the inputs that arrived, applied in order, followed by
// Advance(DtMs). Recording received garbage keeps versus games replayable
// one seat at a time.
type Frame struct {
	DtMs    uint32        `json:"dt"`
	Garbage []GarbageSpec `json:"garbage,omitempty"`
	Inputs  []Action      `json:"inputs,omitempty"`
}

// Empty reports whether the frame carries nothing but elapsed time.
func (f *Frame) Empty() bool { return len(f.Garbage) == 0 && len(f.Inputs) == 0 }

// Step applies a frame to g and returns the events it produced. Once the
// game is over the remaining work is skipped and ErrEngineHalted returned.
func (g *GameState) Step(f Frame) ([]Event, error) {
	var out []Event
	for _, spec := range f.Garbage {
		if err := g.ReceiveGarbage(spec); err != nil {
			return out, err
		}
	}
	for _, a := range f.Inputs {
		evs, err := g.ApplyInput(a)
		out = append(out, evs...)
		if err != nil {
			return out, err
		}
	}
	evs, err := g.Advance(f.DtMs)
	out = append(out, evs...)
	return out, err
}

// Replay re-simulates a recorded game from its seed and rules. Frames after
// game over are ignored. Any other engine error aborts the replay.
func Replay(seed uint64, rules Rules, frames []Frame) (GameState, []Event, error) {
	g := NewGame(seed, rules)
	var all []Event
	for i, f := range frames {
		if g.IsGameOver() {
			break
		}
		evs, err := g.Step(f)
		all = append(all, evs...)
		if err != nil && !errors.Is(err, ErrEngineHalted) {
			return g, all, fmt.Errorf("replay frame %d: %w", i, err)
		}
	}
	return g, all, nil
}
