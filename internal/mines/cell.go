package mines

import "strconv"

// Cell is one grid position. AdjacentMines is only meaningful when HasMine is
// false.
type Cell struct {
	HasMine       bool `json:"has_mine"`
	IsRevealed    bool `json:"is_revealed"`
	IsFlagged     bool `json:"is_flagged"`
	AdjacentMines int  `json:"adjacent_mines"`
}

// String renders the cell as the player would see it:
//
//	#    unrevealed
//	F    flagged
//	*    revealed mine
//	.    revealed, no adjacent mines
//	1-8  revealed, adjacent mine count
func (c Cell) String() string {
	switch {
	case c.IsRevealed && c.HasMine:
		return "*"
	case c.IsRevealed && c.AdjacentMines == 0:
		return "."
	case c.IsRevealed:
		return strconv.Itoa(c.AdjacentMines)
	case c.IsFlagged:
		return "F"
	default:
		return "#"
	}
}
