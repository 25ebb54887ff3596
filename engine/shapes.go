package engine

import "math/bits"

// Shape is a 4×4 occupancy bitmap. Bit row*4+col is set when the cell at
// (col, row) of the piece's bounding box is filled.
type Shape uint16

// Has reports whether the cell at (col, row) of the box is filled.
func (s Shape) Has(col, row int) bool {
	if col < 0 || col > 3 || row < 0 || row > 3 {
		return false
	}
	return s&(1<<(row*4+col)) != 0
}

// Count returns the number of filled cells.
func (s Shape) Count() int { return bits.OnesCount16(uint16(s)) }

// Points returns the filled cells in row-major order. Shapes hold at most
// four cells; extra bits are ignored.
func (s Shape) Points() [4]Point {
	var out [4]Point
	n := 0
	for b := s; b != 0 && n < 4; b &= b - 1 {
		i := bits.TrailingZeros16(uint16(b))
		out[n] = Point{Col: i % 4, Row: i / 4}
		n++
	}
	return out
}

func maskOf(cells [4]Point) Shape {
	var s Shape
	for _, c := range cells {
		s |= 1 << (c.Row*4 + c.Col)
	}
	return s
}

// pieceDef describes a piece in rotation state 0 within its bounding box.
type pieceDef struct {
	box      int
	spawnCol int
	cells    [4]Point
}

var pieceDefs = [NumPieceTypes + 1]pieceDef{
	PieceI: {box: 4, spawnCol: 3, cells: [4]Point{{0, 1}, {1, 1}, {2, 1}, {3, 1}}},
	PieceO: {box: 2, spawnCol: 4, cells: [4]Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	PieceT: {box: 3, spawnCol: 3, cells: [4]Point{{1, 0}, {0, 1}, {1, 1}, {2, 1}}},
	PieceS: {box: 3, spawnCol: 3, cells: [4]Point{{1, 0}, {2, 0}, {0, 1}, {1, 1}}},
	PieceZ: {box: 3, spawnCol: 3, cells: [4]Point{{0, 0}, {1, 0}, {1, 1}, {2, 1}}},
	PieceJ: {box: 3, spawnCol: 3, cells: [4]Point{{0, 0}, {0, 1}, {1, 1}, {2, 1}}},
	PieceL: {box: 3, spawnCol: 3, cells: [4]Point{{2, 0}, {0, 1}, {1, 1}, {2, 1}}},
}

// SpawnRow is the anchor row of every newly spawned piece. Filled cells of
// state 0 sit in the last two buffer rows.
const SpawnRow = BufferZone - 2

// cellTable[p][r] keeps cells in the same order across rotations so an item
// attached to cell i stays on the same block while the piece turns.
var cellTable, shapeTable = buildShapeTables()

func buildShapeTables() (cells [NumPieceTypes + 1][4][4]Point, shapes [NumPieceTypes + 1][4]Shape) {
	for _, p := range AllPieces {
		def := pieceDefs[p]
		cur := def.cells
		for r := 0; r < 4; r++ {
			cells[p][r] = cur
			shapes[p][r] = maskOf(cur)
			// Clockwise turn inside the box: (c, r) → (box-1-r, c).
			for i, c := range cur {
				cur[i] = Point{Col: def.box - 1 - c.Row, Row: c.Col}
			}
		}
	}
	return cells, shapes
}

// ShapeOf returns the occupancy mask of piece p in rotation state rot.
func ShapeOf(p PieceType, rot uint8) Shape {
	if !p.Valid() {
		return 0
	}
	return shapeTable[p][rot&3]
}

// CellsOf returns the box-relative cells of p in rotation rot, ordered
// consistently across rotations.
func CellsOf(p PieceType, rot uint8) [4]Point {
	if !p.Valid() {
		return [4]Point{}
	}
	return cellTable[p][rot&3]
}

// SpawnCol returns the anchor column a piece of type p spawns at.
func SpawnCol(p PieceType) int { return pieceDefs[p].spawnCol }

// ---------------------------------------------------------------------------
// Rotation kicks (SRS). Rows point down, so the usual y-up table is negated.
// Index: [from rotation][0 = clockwise, 1 = counter-clockwise]. The implicit
// (0, 0) test is not listed.
// ---------------------------------------------------------------------------

var kicksJLSTZ = [4][2][4]Point{
	0: {
		{{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}, // 0→R
		{{1, 0}, {1, -1}, {0, 2}, {1, 2}},    // 0→L
	},
	1: {
		{{1, 0}, {1, 1}, {0, -2}, {1, -2}}, // R→2
		{{1, 0}, {1, 1}, {0, -2}, {1, -2}}, // R→0
	},
	2: {
		{{1, 0}, {1, -1}, {0, 2}, {1, 2}},    // 2→L
		{{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}, // 2→R
	},
	3: {
		{{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}}, // L→0
		{{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}}, // L→2
	},
}

var kicksI = [4][2][4]Point{
	0: {
		{{-2, 0}, {1, 0}, {-2, 1}, {1, -2}}, // 0→R
		{{-1, 0}, {2, 0}, {-1, -2}, {2, 1}}, // 0→L
	},
	1: {
		{{-1, 0}, {2, 0}, {-1, -2}, {2, 1}}, // R→2
		{{2, 0}, {-1, 0}, {2, -1}, {-1, 2}}, // R→0
	},
	2: {
		{{2, 0}, {-1, 0}, {2, -1}, {-1, 2}}, // 2→L
		{{1, 0}, {-2, 0}, {1, 2}, {-2, -1}}, // 2→R
	},
	3: {
		{{1, 0}, {-2, 0}, {1, 2}, {-2, -1}}, // L→0
		{{-2, 0}, {1, 0}, {-2, 1}, {1, -2}}, // L→2
	},
}

// Kicks returns the offsets tried, in order, when rotating p out of state
// from. The O piece has none.
func Kicks(p PieceType, from uint8, clockwise bool) []Point {
	dir := 1
	if clockwise {
		dir = 0
	}
	switch p {
	case PieceI:
		return kicksI[from&3][dir][:]
	case PieceJ, PieceL, PieceS, PieceT, PieceZ:
		return kicksJLSTZ[from&3][dir][:]
	}
	return nil
}
