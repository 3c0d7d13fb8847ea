package mines

import "github.com/gammazero/deque"

type point struct {
	row, col int
}

// RevealCell opens row:col and, when it is a safe cell with no adjacent mines,
// keeps opening the surrounding safe cells until the region is bounded by
// numbered cells. Out-of-bounds or already revealed targets are ignored.
//
// Cells are marked revealed as they are queued, so every cell enters the
// worklist at most once and the whole cascade is bounded by the grid size.
// Returns the number of cells that were newly revealed.
func RevealCell(grid Grid, row, col int) int {
	if !grid.InBounds(row, col) || grid[row][col].IsRevealed {
		return 0
	}

	grid[row][col].IsRevealed = true
	revealed := 1

	var todo deque.Deque
	todo.PushBack(point{row, col})

	for todo.Len() > 0 {
		p := todo.PopFront().(point)
		cell := grid[p.row][p.col]
		if cell.HasMine || cell.AdjacentMines != 0 {
			continue
		}
		for r, c := range grid.Neighbors(p.row, p.col) {
			neighbor := &grid[r][c]
			if neighbor.HasMine || neighbor.IsRevealed {
				continue
			}
			neighbor.IsRevealed = true
			revealed++
			todo.PushBack(point{r, c})
		}
	}

	return revealed
}

// RevealAll opens every cell. Flags and adjacency counts are left untouched.
func RevealAll(grid Grid) {
	for row := range grid {
		for col := range grid[row] {
			grid[row][col].IsRevealed = true
		}
	}
}
