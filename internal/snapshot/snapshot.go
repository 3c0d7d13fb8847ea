// Package snapshot writes the final board of a finished game to YAML.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

// Board cell glyphs.
const (
	LosingMine  = '*'
	FlaggedMine = 'F'
	Mine        = 'O'
	Flagged     = 'f'
	Revealed    = '.'
	Unrevealed  = '#'
)

const (
	timeLayout = "20060102_150405"
	fileSuffix = ".yaml"
)

type Snapshot struct {
	Board          string `yaml:"board"`
	Size           int    `yaml:"size"`
	MineCount      int    `yaml:"mine_count"`
	Status         string `yaml:"status"`
	ElapsedSeconds int    `yaml:"elapsed_seconds"`
	Mode           string `yaml:"mode"`
	EndedAt        string `yaml:"ended_at"`

	status mines.Status
	at     time.Time
}

func cellGlyph(cell mines.Cell, losing bool) byte {
	switch {
	case cell.HasMine:
		switch {
		case losing:
			return LosingMine
		case cell.IsFlagged:
			return FlaggedMine
		default:
			return Mine
		}
	case cell.IsFlagged:
		return Flagged
	case cell.IsRevealed:
		return Revealed
	default:
		return Unrevealed
	}
}

// New captures game as it is at the time of the call.
func New(game *mines.GameState, at time.Time) *Snapshot {
	lr, lc, lost := game.LosingCell()
	grid := game.Grid()

	var b strings.Builder
	for row := range grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col, cell := range grid[row] {
			b.WriteByte(cellGlyph(cell, lost && row == lr && col == lc))
		}
	}

	return &Snapshot{
		Board:          b.String(),
		Size:           grid.Size(),
		MineCount:      game.Params().MineCount,
		Status:         game.Status().String(),
		ElapsedSeconds: game.ElapsedSeconds(),
		Mode:           game.Mode().String(),
		EndedAt:        at.UTC().Format(time.RFC3339),
		status:         game.Status(),
		at:             at,
	}
}

func (s *Snapshot) Serialize() ([]byte, error) {
	return yaml.Marshal(s)
}

func Decode(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Grid rebuilds the mine layout and flags of the snapshot on an unrevealed
// board.
func (s *Snapshot) Grid() (mines.Grid, error) {
	rows := strings.Split(s.Board, "\n")
	grid := mines.NewGrid(len(rows))
	for row, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("snapshot row %d: want %d cells, got %d", row, len(rows), len(line))
		}
		for col := range len(line) {
			cell := grid.At(row, col)
			switch line[col] {
			case LosingMine, Mine:
				cell.HasMine = true
			case FlaggedMine:
				cell.HasMine, cell.IsFlagged = true, true
			case Flagged:
				cell.IsFlagged = true
			case Revealed, Unrevealed:
			default:
				return nil, fmt.Errorf("snapshot row %d: unknown cell %q", row, line[col])
			}
		}
	}
	mines.ComputeAdjacency(grid)
	return grid, nil
}

// Filename is the name a snapshot of a game ending in status at t is saved
// under, e.g. "20240131_235959_win.yaml".
func Filename(status mines.Status, t time.Time) string {
	var b strings.Builder
	b.WriteString(t.Format(timeLayout))
	b.WriteByte('_')
	switch status {
	case mines.Won:
		b.WriteString("win")
	case mines.Lost:
		b.WriteString("loss")
	default:
		b.WriteString("other")
	}
	b.WriteString(fileSuffix)
	return b.String()
}

// Saver writes snapshots into Dir, creating it when needed.
type Saver struct {
	Dir string
	Now func() time.Time
}

func (s *Saver) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Capture snapshots game with the saver's clock.
func (s *Saver) Capture(game *mines.GameState) *Snapshot {
	return New(game, s.now())
}

// Save writes snapshot and returns the path of the file. Names that are taken
// get a numeric suffix.
func (s *Saver) Save(snapshot *Snapshot) (string, error) {
	data, err := snapshot.Serialize()
	if err != nil {
		return "", err
	}
	return s.write(snapshot.status, snapshot.at, data)
}

func (s *Saver) write(status mines.Status, at time.Time, data []byte) (string, error) {
	stat, err := os.Stat(s.Dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(s.Dir, 0o777); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	} else if !stat.IsDir() {
		return "", fmt.Errorf("%s is not a directory; cannot save snapshots to it", s.Dir)
	}

	name := Filename(status, at)
	path := filepath.Join(s.Dir, name)
	for i := 1; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			path = filepath.Join(s.Dir, fmt.Sprintf("%s_%d%s",
				strings.TrimSuffix(name, fileSuffix), i, fileSuffix))
			continue
		} else if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		return path, f.Close()
	}
}
