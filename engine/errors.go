package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports a merge or placement outside the grid. Callers
	// check CanPlace first, so seeing it means an engine bug.
	ErrOutOfBounds = errors.New("placement out of bounds")

	// ErrInvalidTransition reports a mutation attempted in a state that does
	// not allow it.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrEngineHalted is returned by every mutator once the game is over.
	ErrEngineHalted = fmt.Errorf("engine halted: %w", ErrInvalidTransition)

	// ErrRandomizerExhausted reports a bag with nothing left to draw.
	// Unreachable by construction.
	ErrRandomizerExhausted = errors.New("randomizer exhausted")

	// ErrUnknownAction reports an input outside the Action set.
	ErrUnknownAction = errors.New("unknown action")
)
