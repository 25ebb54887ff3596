package engine

// Difficulty scales gravity and soft drop speed independently of level.
type Difficulty uint8

const (
	DifficultyNormal Difficulty = iota // 0
	DifficultyEasy                     // 1
	DifficultyHard                     // 2
)

var difficultyNames = [...]string{"normal", "easy", "hard"}

func (d Difficulty) String() string {
	if int(d) < len(difficultyNames) {
		return difficultyNames[d]
	}
	return "normal"
}

// ParseDifficulty maps "easy", "normal" or "hard" to a Difficulty.
// Unknown names fall back to normal.
func ParseDifficulty(s string) Difficulty {
	for i, name := range difficultyNames {
		if name == s {
			return Difficulty(i)
		}
	}
	return DifficultyNormal
}

// MaxGravityLevel is the level at which gravity stops getting faster.
const MaxGravityLevel = 20

// gravityMs is the guideline fall interval per row, rounded to whole
// milliseconds: (0.8 - (level-1)*0.007)^(level-1) seconds. Index 0 unused.
var gravityMs = [MaxGravityLevel + 1]uint32{
	0,
	1000, 793, 618, 473, 355, 262, 190, 135, 94, 64,
	43, 28, 18, 11, 7, 5, 3, 2, 1, 1,
}

// difficultyScale is the numerator/denominator applied to gravityMs.
var difficultyScale = [...][2]uint32{
	DifficultyNormal: {1, 1},
	DifficultyEasy:   {3, 2},
	DifficultyHard:   {1, 2},
}

var softDropMultiplier = [...]uint32{
	DifficultyNormal: 20,
	DifficultyEasy:   10,
	DifficultyHard:   40,
}

// FallInterval returns the milliseconds per gravity row at level under d.
// Levels are clamped to [1, MaxGravityLevel]; the result is at least 1.
func FallInterval(level uint32, d Difficulty) uint32 {
	if level < 1 {
		level = 1
	}
	if level > MaxGravityLevel {
		level = MaxGravityLevel
	}
	if int(d) >= len(difficultyScale) {
		d = DifficultyNormal
	}
	scale := difficultyScale[d]
	ms := gravityMs[level] * scale[0] / scale[1]
	if ms < 1 {
		ms = 1
	}
	return ms
}

// SoftDropMultiplier returns how many times faster gravity runs while soft
// drop is engaged.
func SoftDropMultiplier(d Difficulty) uint32 {
	if int(d) >= len(softDropMultiplier) {
		d = DifficultyNormal
	}
	return softDropMultiplier[d]
}
