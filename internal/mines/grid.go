package mines

import (
	"fmt"
	"iter"
	"strings"
)

// Grid is a square matrix of cells addressed as grid[row][col].
type Grid [][]Cell

// NewGrid allocates a size x size grid of hidden, mine-free cells.
func NewGrid(size int) Grid {
	if size <= 0 {
		return Grid{}
	}
	grid := make(Grid, size)
	for row := range size {
		grid[row] = make([]Cell, size)
	}
	return grid
}

func (g Grid) Size() int {
	return len(g)
}

func (g Grid) InBounds(row, col int) bool {
	return 0 <= row && row < len(g) && 0 <= col && col < len(g)
}

// At returns the cell at row:col, or nil when out of bounds.
func (g Grid) At(row, col int) *Cell {
	if !g.InBounds(row, col) {
		return nil
	}
	return &g[row][col]
}

// Neighbors yields the in-bounds coordinates of the up to 8 cells surrounding
// row:col.
func (g Grid) Neighbors(row, col int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if !g.InBounds(r, c) {
					continue
				}
				if !yield(r, c) {
					return
				}
			}
		}
	}
}

func (g Grid) MineCount() (count int) {
	for _, cells := range g {
		for _, cell := range cells {
			if cell.HasMine {
				count++
			}
		}
	}
	return
}

// Cleared reports whether every non-mine cell is revealed. Flags are not
// considered.
func (g Grid) Cleared() bool {
	for _, cells := range g {
		for _, cell := range cells {
			if !cell.HasMine && !cell.IsRevealed {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy that shares no cells with g.
func (g Grid) Clone() Grid {
	clone := make(Grid, len(g))
	for row := range g {
		clone[row] = make([]Cell, len(g[row]))
		copy(clone[row], g[row])
	}
	return clone
}

func (g Grid) String() string {
	var b strings.Builder
	for _, cells := range g {
		for col, cell := range cells {
			if col > 0 {
				fmt.Fprint(&b, " ")
			}
			fmt.Fprint(&b, cell.String())
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
