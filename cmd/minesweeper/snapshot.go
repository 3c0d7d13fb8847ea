package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect saved boards of finished games",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Draw a saved board with every mine and count uncovered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSnapshot(os.Stdout, args[0])
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
}

func showSnapshot(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", path, err)
	}
	grid, err := snap.Grid()
	if err != nil {
		return err
	}
	renderSnapshot(w, snap, grid)
	return nil
}

// renderSnapshot draws mines with their saved glyph, wrongly flagged cells as
// f and every other cell with its adjacent mine count.
func renderSnapshot(w io.Writer, snap *snapshot.Snapshot, grid mines.Grid) {
	board := mines.GameParams{Size: snap.Size, MineCount: snap.MineCount}.Key()
	fmt.Fprintf(w, "%s  board: %s  time: %ds  ended: %s\n",
		snap.Status, board, snap.ElapsedSeconds, snap.EndedAt,
	)

	rows := strings.Split(snap.Board, "\n")
	width := len(fmt.Sprint(grid.Size() - 1))
	pad := strings.Repeat(" ", width)

	fmt.Fprint(w, pad)
	for col := range grid.Size() {
		fmt.Fprintf(w, " %*d", width, col)
	}
	fmt.Fprintln(w)

	for row := range grid {
		fmt.Fprintf(w, "%*d", width, row)
		for col, cell := range grid[row] {
			var glyph string
			switch {
			case cell.HasMine:
				glyph = string(rows[row][col])
			case cell.IsFlagged:
				glyph = string(snapshot.Flagged)
			default:
				cell.IsRevealed = true
				glyph = cell.String()
			}
			fmt.Fprintf(w, " %*s", width, glyph)
		}
		fmt.Fprintln(w)
	}
}
