package engine

import (
	"errors"
	"testing"
)

func TestClearFullRowsSingle(t *testing.T) {
	var b Board
	fillRow(&b, TotalRows-1)
	// Marker blocks above the full row.
	b.Cells[TotalRows-2][3] = PieceT.Color()
	b.Cells[TotalRows-3][7] = PieceL.Color()

	if n := b.ClearFullRows(); n != 1 {
		t.Fatalf("ClearFullRows = %d, want 1", n)
	}

	// The cleared row now holds what was directly above it.
	if got := b.Cells[TotalRows-1][3]; got != PieceT.Color() {
		t.Errorf("floor col 3 = %d, want T", got)
	}
	if got := b.Cells[TotalRows-2][7]; got != PieceL.Color() {
		t.Errorf("row above floor col 7 = %d, want L", got)
	}
	if n := b.Occupied(); n != 2 {
		t.Errorf("Occupied = %d, want 2", n)
	}
	for c := 0; c < Width; c++ {
		if c != 3 && b.Cells[TotalRows-1][c] != CellEmpty {
			t.Errorf("floor col %d not empty", c)
		}
	}
}

func TestClearFullRowsNonAdjacent(t *testing.T) {
	var b Board
	fillRow(&b, TotalRows-1)
	fillRow(&b, TotalRows-2, 0)
	fillRow(&b, TotalRows-3)
	if n := b.ClearFullRows(); n != 2 {
		t.Fatalf("ClearFullRows = %d, want 2", n)
	}
	// The partial row dropped to the floor.
	if b.Cells[TotalRows-1][0] != CellEmpty || b.Cells[TotalRows-1][1] != CellGarbage {
		t.Errorf("partial row did not drop to the floor: %v", b.Cells[TotalRows-1])
	}
	if n := b.Occupied(); n != Width-1 {
		t.Errorf("Occupied = %d, want %d", n, Width-1)
	}
}

func TestClearFullRowsNone(t *testing.T) {
	var b Board
	fillRow(&b, TotalRows-1, 9)
	if n := b.ClearFullRows(); n != 0 {
		t.Errorf("ClearFullRows = %d, want 0", n)
	}
	if n := b.Occupied(); n != Width-1 {
		t.Errorf("Occupied = %d, want %d", n, Width-1)
	}
}

func TestMergeOutOfBounds(t *testing.T) {
	var b Board
	err := b.Merge(ShapeOf(PieceI, 0), 8, 10, PieceI.Color())
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Merge past the wall: err = %v, want ErrOutOfBounds", err)
	}
	if n := b.Occupied(); n != 0 {
		t.Errorf("Occupied = %d after failed merge, want 0", n)
	}

	err = b.Merge(ShapeOf(PieceO, 0), 0, TotalRows-1, PieceO.Color())
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Merge past the floor: err = %v, want ErrOutOfBounds", err)
	}
}

func TestMergeAndCanPlace(t *testing.T) {
	var b Board
	s := ShapeOf(PieceO, 0)
	if !b.CanPlace(s, 0, TotalRows-2) {
		t.Fatal("O does not fit on an empty floor")
	}
	if err := b.Merge(s, 0, TotalRows-2, PieceO.Color()); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !b.IsOccupied(0, TotalRows-1) || !b.IsOccupied(1, TotalRows-2) {
		t.Error("merged cells not occupied")
	}
	if b.CanPlace(s, 1, TotalRows-2) {
		t.Error("CanPlace over an occupied cell")
	}
	if b.CanPlace(s, -1, 5) || b.CanPlace(s, Width-1, 5) {
		t.Error("CanPlace across a wall")
	}
	if !b.IsOccupied(-1, 0) {
		t.Error("walls should read as occupied")
	}
	if !b.IsOccupied(0, TotalRows) {
		t.Error("floor should read as occupied")
	}
}

func TestInsertGarbage(t *testing.T) {
	var b Board
	b.Cells[TotalRows-1][0] = PieceJ.Color()

	if b.InsertGarbage(2, 4) {
		t.Error("overflow reported on a low stack")
	}
	if b.Cells[TotalRows-3][0] != PieceJ.Color() {
		t.Error("existing rows did not shift up")
	}
	for _, r := range []int{TotalRows - 1, TotalRows - 2} {
		for c := 0; c < Width; c++ {
			want := CellGarbage
			if c == 4 {
				want = CellEmpty
			}
			if b.Cells[r][c] != want {
				t.Errorf("row %d col %d = %d, want %d", r, c, b.Cells[r][c], want)
			}
		}
	}

	b.Cells[0][5] = PieceZ.Color()
	if !b.InsertGarbage(1, 0) {
		t.Error("top row pushed off without overflow")
	}
}

func TestItemClears(t *testing.T) {
	var b Board
	fillRow(&b, TotalRows-1, 2)
	b.Cells[TotalRows-2][5] = PieceT.Color()

	if n := b.ClearColumn(5); n != 2 {
		t.Errorf("ClearColumn = %d, want 2", n)
	}
	if b.Cells[TotalRows-1][5] != CellEmpty {
		t.Error("column 5 not cleared")
	}

	if n := b.ClearRow(TotalRows - 1); n != Width-2 {
		t.Errorf("ClearRow = %d, want %d", n, Width-2)
	}
	if n := b.Occupied(); n != 0 {
		t.Errorf("Occupied = %d, want 0", n)
	}

	fillRow(&b, TotalRows-1)
	fillRow(&b, TotalRows-2)
	fillRow(&b, TotalRows-3)
	// Corner bomb is clipped to the grid.
	if n := b.ClearArea(0, TotalRows-2, 1); n != 6 {
		t.Errorf("ClearArea = %d, want 6", n)
	}
}

func TestHighestOccupiedRow(t *testing.T) {
	var b Board
	if r := b.HighestOccupiedRow(3); r != TotalRows {
		t.Errorf("empty column: %d, want %d", r, TotalRows)
	}
	b.Cells[15][3] = CellGarbage
	b.Cells[20][3] = CellGarbage
	if r := b.HighestOccupiedRow(3); r != 15 {
		t.Errorf("HighestOccupiedRow = %d, want 15", r)
	}
}
