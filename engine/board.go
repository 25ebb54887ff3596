package engine

import "fmt"

const (
	Width      = 10
	Height     = 20
	BufferZone = 4
	TotalRows  = Height + BufferZone
)

// Board is the playfield: TotalRows rows of Width cells. Rows
// 0..BufferZone-1 are the hidden buffer zone; row TotalRows-1 is the floor.
type Board struct {
	Cells [TotalRows][Width]Cell
}

func inGrid(col, row int) bool {
	return col >= 0 && col < Width && row >= 0 && row < TotalRows
}

// IsOccupied reports whether (col, row) holds a block. Coordinates outside
// the grid report true so walls and floor collide like filled cells.
func (b *Board) IsOccupied(col, row int) bool {
	if !inGrid(col, row) {
		return true
	}
	return b.Cells[row][col] != CellEmpty
}

// CanPlace reports whether shape s anchored at (col, row) lies inside the
// grid without overlapping committed cells.
func (b *Board) CanPlace(s Shape, col, row int) bool {
	pts := s.Points()
	for _, c := range pts[:s.Count()] {
		if b.IsOccupied(col+c.Col, row+c.Row) {
			return false
		}
	}
	return true
}

// Merge commits shape s anchored at (col, row) with the given color. If any
// cell falls outside the grid nothing is written and ErrOutOfBounds is
// returned.
func (b *Board) Merge(s Shape, col, row int, color Cell) error {
	pts := s.Points()
	n := s.Count()
	for _, c := range pts[:n] {
		if !inGrid(col+c.Col, row+c.Row) {
			return fmt.Errorf("cell (%d,%d): %w", col+c.Col, row+c.Row, ErrOutOfBounds)
		}
	}
	for _, c := range pts[:n] {
		b.Cells[row+c.Row][col+c.Col] = color
	}
	return nil
}

// rowFull reports whether every cell in row r is occupied.
func (b *Board) rowFull(r int) bool {
	for _, c := range b.Cells[r] {
		if c == CellEmpty {
			return false
		}
	}
	return true
}

func (b *Board) rowEmpty(r int) bool {
	for _, c := range b.Cells[r] {
		if c != CellEmpty {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, scanning bottom to top, and
// compacts the rows above downward. It returns the number of rows removed.
func (b *Board) ClearFullRows() int {
	cleared := 0
	dst := TotalRows - 1
	for src := TotalRows - 1; src >= 0; src-- {
		if b.rowFull(src) {
			cleared++
			continue
		}
		if dst != src {
			b.Cells[dst] = b.Cells[src]
		}
		dst--
	}
	for ; dst >= 0; dst-- {
		b.Cells[dst] = [Width]Cell{}
	}
	return cleared
}

// ClearRow removes row r and shifts everything above it down by one.
// Returns the number of occupied cells removed.
func (b *Board) ClearRow(r int) int {
	if r < 0 || r >= TotalRows {
		return 0
	}
	n := 0
	for _, c := range b.Cells[r] {
		if c != CellEmpty {
			n++
		}
	}
	copy(b.Cells[1:r+1], b.Cells[:r])
	b.Cells[0] = [Width]Cell{}
	return n
}

// ClearColumn empties every cell in column col without compacting.
func (b *Board) ClearColumn(col int) int {
	if col < 0 || col >= Width {
		return 0
	}
	n := 0
	for r := range b.Cells {
		if b.Cells[r][col] != CellEmpty {
			b.Cells[r][col] = CellEmpty
			n++
		}
	}
	return n
}

// ClearArea empties the square of the given radius centred on (col, row).
func (b *Board) ClearArea(col, row, radius int) int {
	n := 0
	for r := row - radius; r <= row+radius; r++ {
		for c := col - radius; c <= col+radius; c++ {
			if inGrid(c, r) && b.Cells[r][c] != CellEmpty {
				b.Cells[r][c] = CellEmpty
				n++
			}
		}
	}
	return n
}

// InsertGarbage shifts every row up by lines and fills the vacated bottom
// rows with garbage, leaving hole empty in each. It reports whether any
// occupied cell was pushed off the top of the grid.
func (b *Board) InsertGarbage(lines, hole int) (overflow bool) {
	if lines <= 0 {
		return false
	}
	if lines > TotalRows {
		lines = TotalRows
	}
	for r := 0; r < lines; r++ {
		if !b.rowEmpty(r) {
			overflow = true
			break
		}
	}
	copy(b.Cells[:TotalRows-lines], b.Cells[lines:])
	for r := TotalRows - lines; r < TotalRows; r++ {
		for c := range b.Cells[r] {
			if c == hole {
				b.Cells[r][c] = CellEmpty
			} else {
				b.Cells[r][c] = CellGarbage
			}
		}
	}
	return overflow
}

// HighestOccupiedRow returns the smallest row index holding a block in
// column col, or TotalRows if the column is empty.
func (b *Board) HighestOccupiedRow(col int) int {
	for r := 0; r < TotalRows; r++ {
		if b.Cells[r][col] != CellEmpty {
			return r
		}
	}
	return TotalRows
}

// Occupied returns the number of filled cells on the board.
func (b *Board) Occupied() int {
	n := 0
	for r := range b.Cells {
		for _, c := range b.Cells[r] {
			if c != CellEmpty {
				n++
			}
		}
	}
	return n
}
