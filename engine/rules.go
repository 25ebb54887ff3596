package engine

// Rules holds the per-engine configuration. Zero fields fall back to the
// defaults noted beside them, so Rules{} is a playable normal game.
type Rules struct {
	Mode          Mode
	Difficulty    Difficulty
	Competitive   bool   // emit GarbagePushed on multi-line clears
	StartLevel    uint8  // 0 treated as 1
	Preview       uint8  // next-queue depth; 0 treated as 5, capped at MaxPreview
	LockDelayMs   uint16 // 0 treated as 500
	MaxLockResets uint8  // 0 treated as 15
	LinesPerLevel uint8  // 0 treated as 10
	ItemEvery     uint8  // item mode: every Nth queued piece carries an item; 0 treated as 8
	TimeLimitMs   uint32 // time attack clock; 0 treated as 120000
	LineGoal      uint16 // time attack: lines that end the game early; 0 = none
}

// DefaultRules returns the standard single-player rules.
func DefaultRules() Rules {
	return Rules{
		Mode:          ModeNormal,
		Difficulty:    DifficultyNormal,
		StartLevel:    1,
		Preview:       5,
		LockDelayMs:   500,
		MaxLockResets: 15,
		LinesPerLevel: 10,
	}
}

// VersusRules returns DefaultRules with garbage exchange enabled.
func VersusRules() Rules {
	r := DefaultRules()
	r.Competitive = true
	return r
}

func (r *Rules) startLevel() uint32 {
	if r.StartLevel == 0 {
		return 1
	}
	return uint32(r.StartLevel)
}

func (r *Rules) preview() int {
	switch {
	case r.Preview == 0:
		return 5
	case r.Preview > MaxPreview:
		return MaxPreview
	}
	return int(r.Preview)
}

func (r *Rules) lockDelay() uint32 {
	if r.LockDelayMs == 0 {
		return 500
	}
	return uint32(r.LockDelayMs)
}

func (r *Rules) maxLockResets() uint8 {
	if r.MaxLockResets == 0 {
		return 15
	}
	return r.MaxLockResets
}

func (r *Rules) linesPerLevel() uint32 {
	if r.LinesPerLevel == 0 {
		return 10
	}
	return uint32(r.LinesPerLevel)
}

func (r *Rules) itemEvery() uint32 {
	if r.ItemEvery == 0 {
		return 8
	}
	return uint32(r.ItemEvery)
}

func (r *Rules) timeLimit() uint32 {
	if r.TimeLimitMs == 0 {
		return 120000
	}
	return r.TimeLimitMs
}
