package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

func formatBest(seconds int, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%ds", seconds)
}

func statusLine(game *mines.GameState) string {
	switch game.Status() {
	case mines.Won:
		return "won"
	case mines.Lost:
		return "lost"
	}
	return "mode: " + game.Mode().String()
}

// renderGame draws the header and the grid with row and column indices. The
// mine that ended a lost game is drawn as X.
func renderGame(w io.Writer, game *mines.GameState, best int, hasBest bool) {
	fmt.Fprintf(w, "%s  flags: %d  time: %ds  best: %s\n",
		statusLine(game), game.RemainingFlags(), game.ElapsedSeconds(), formatBest(best, hasBest),
	)

	losingRow, losingCol, lost := game.LosingCell()
	width := len(fmt.Sprint(game.Size() - 1))
	pad := strings.Repeat(" ", width)

	fmt.Fprint(w, pad)
	for col := range game.Size() {
		fmt.Fprintf(w, " %*d", width, col)
	}
	fmt.Fprintln(w)

	for row := range game.Size() {
		fmt.Fprintf(w, "%*d", width, row)
		for col := range game.Size() {
			glyph := "#"
			if cell, ok := game.Cell(row, col); ok {
				glyph = cell.String()
			}
			if lost && row == losingRow && col == losingCol {
				glyph = "X"
			}
			fmt.Fprintf(w, " %*s", width, glyph)
		}
		fmt.Fprintln(w)
	}
}
