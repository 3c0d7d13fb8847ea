package handlers

import (
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

// Glyph of the mine that ended a lost game. Other cells use [mines.Cell.String].
const losingMineGlyph = "X"

type PointDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameDTO is what players see of a game. Unrevealed cells render as "#" or
// "F", so mine positions stay hidden until the game ends.
type GameDTO struct {
	ID             string       `json:"id"`
	Size           int          `json:"size"`
	MineCount      int          `json:"mine_count"`
	Status         mines.Status `json:"status"`
	Mode           mines.Mode   `json:"mode"`
	ElapsedSeconds int          `json:"elapsed_seconds"`
	TimerRunning   bool         `json:"timer_running"`
	RemainingFlags int          `json:"remaining_flags"`
	Grid           [][]string   `json:"grid"`
	LosingCell     *PointDTO    `json:"losing_cell,omitempty"`
}

func NewGameDTO(id string, g *mines.GameState) *GameDTO {
	grid := g.Grid()
	cells := make([][]string, len(grid))
	for row := range grid {
		cells[row] = make([]string, len(grid[row]))
		for col, cell := range grid[row] {
			cells[row][col] = cell.String()
		}
	}

	var losing *PointDTO
	if row, col, ok := g.LosingCell(); ok {
		losing = &PointDTO{row, col}
		cells[row][col] = losingMineGlyph
	}

	return &GameDTO{
		ID:             id,
		Size:           g.Size(),
		MineCount:      g.Params().MineCount,
		Status:         g.Status(),
		Mode:           g.Mode(),
		ElapsedSeconds: g.ElapsedSeconds(),
		TimerRunning:   g.TimerRunning(),
		RemainingFlags: g.RemainingFlags(),
		Grid:           cells,
		LosingCell:     losing,
	}
}

type CreatedDTO struct {
	Token string   `json:"token"`
	Game  *GameDTO `json:"game"`
}

type ActionDTO struct {
	Event mines.Event `json:"event"`
	Game  *GameDTO    `json:"game"`
}

type UpdateDTO struct {
	Game *GameDTO `json:"game"`
}

type BestTimeDTO struct {
	Board       string `json:"board"`
	BestSeconds *int   `json:"best_seconds"`
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}
