package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // refresh
	"a": 2, // cell action at row, col
	"m": 0, // toggle mode
	"n": 0, // new game
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("first argument must be an int")
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("second argument must be an int")
		return
	}
	return
}

// executeCommand runs one line command against s. Coordinates outside the
// board are passed through, the engine ignores them.
func executeCommand(s *session.Session, c string) (mines.Event, error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return mines.Event{}, errors.New("empty command")
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return mines.Event{}, errors.New("unknown command")
	}
	if nargs != len(parts)-1 {
		return mines.Event{}, errors.New("invalid number of arguments")
	}
	switch parts[0] {
	case "g":
		return mines.Event{}, nil
	case "a":
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return mines.Event{}, err
		}
		return s.Act(row, col)
	case "m":
		return mines.Event{}, s.ToggleMode()
	case "n":
		return mines.Event{}, s.Restart()
	}
	return mines.Event{}, errors.New("invalid command")
}
