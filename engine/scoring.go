package engine

// Base points per lock by rows cleared, multiplied by the current level.
var lineClearPoints = [5]uint64{0, 100, 300, 500, 800}

const (
	comboPoints    = 50 // per combo step beyond the first clear, times level
	softDropPoints = 1  // per row
	hardDropPoints = 2  // per row
)

// garbageLines maps rows cleared in one lock to attack lines sent.
var garbageLines = [5]uint8{0, 0, 1, 2, 4}

// LineClearScore returns the points for clearing n rows at level.
func LineClearScore(n int, level uint32) uint64 {
	if n <= 0 {
		return 0
	}
	if n > 4 {
		n = 4
	}
	return lineClearPoints[n] * uint64(level)
}

// ComboBonus returns the bonus for the combo-th consecutive clearing lock.
// The first clear of a chain earns nothing extra.
func ComboBonus(combo uint32, level uint32) uint64 {
	if combo <= 1 {
		return 0
	}
	return comboPoints * uint64(combo-1) * uint64(level)
}

// GarbageFor returns the attack lines produced by clearing n rows at once.
func GarbageFor(n int) uint8 {
	if n <= 0 {
		return 0
	}
	if n > 4 {
		n = 4
	}
	return garbageLines[n]
}

// scoreLock updates score, combo, lines, level and gravity after a lock that
// cleared n rows.
func (g *GameState) scoreLock(n int) {
	if n == 0 {
		g.Stats.Combo = 0
		return
	}
	g.Stats.Combo++
	level := g.Stats.Level
	g.Stats.Score += LineClearScore(n, level) + ComboBonus(g.Stats.Combo, level)
	g.Stats.Lines += uint32(n)
	if n >= 4 {
		g.Stats.Quads++
	}
	g.updateLevel()
}

// updateLevel recomputes level = 1 + lines/LinesPerLevel (never below the
// start level) and the derived fall interval.
func (g *GameState) updateLevel() {
	level := 1 + g.Stats.Lines/g.Rules.linesPerLevel()
	if start := g.Rules.startLevel(); level < start {
		level = start
	}
	g.Stats.Level = level
	g.Stats.FallInterval = FallInterval(level, g.Rules.Difficulty)
}
