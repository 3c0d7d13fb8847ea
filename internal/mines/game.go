package mines

import (
	"fmt"
	"math/rand/v2"
)

type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

var statusNames = map[Status]string{
	InProgress: "in_progress",
	Won:        "won",
	Lost:       "lost",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode decides what a cell action does: open the cell or toggle its flag.
type Mode int

const (
	ModeReveal Mode = iota
	ModeFlag
)

func (m Mode) String() string {
	switch m {
	case ModeReveal:
		return "reveal"
	case ModeFlag:
		return "flag"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// [Mode] implements [encoding.TextMarshaler]
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BestTimeRecorder is consulted when a game is won. Record returns the best
// time after taking seconds into account.
type BestTimeRecorder interface {
	Record(seconds int) (best int)
}

// GameState is one game: its grid plus status, clock, mode and flag budget.
// It is not safe for concurrent use; callers serialise events onto it.
type GameState struct {
	params GameParams
	grid   Grid

	status         Status
	elapsed        int
	timerRunning   bool
	mode           Mode
	remainingFlags int
	losing         *point

	rnd     *rand.Rand
	tracker BestTimeRecorder
}

// NewGame generates a fresh board for params. A nil r uses a randomly seeded
// generator; a nil tracker reports every win as its own best time.
func NewGame(params GameParams, r *rand.Rand, tracker BestTimeRecorder) (*GameState, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = NewRand()
	}
	grid := NewGrid(params.Size)
	if err := PlaceMines(grid, params.MineCount, r); err != nil {
		return nil, err
	}
	ComputeAdjacency(grid)

	state := newGameWithGrid(grid, tracker)
	state.rnd = r
	return state, nil
}

func newGameWithGrid(grid Grid, tracker BestTimeRecorder) *GameState {
	mineCount := grid.MineCount()
	return &GameState{
		params:         GameParams{Size: grid.Size(), MineCount: mineCount},
		grid:           grid,
		status:         InProgress,
		mode:           ModeReveal,
		remainingFlags: mineCount,
		tracker:        tracker,
	}
}

// Restart returns a new game generated with the same parameters, random
// source and best time tracker. The interaction mode carries over.
func (s *GameState) Restart() (*GameState, error) {
	next, err := NewGame(s.params, s.rnd, s.tracker)
	if err != nil {
		return nil, err
	}
	next.mode = s.mode
	return next, nil
}

// OnCellAction applies the current mode to row:col. Actions after the game
// ended, on revealed cells or outside the grid are ignored.
func (s *GameState) OnCellAction(row, col int) Event {
	if s.status != InProgress || !s.grid.InBounds(row, col) {
		return Event{}
	}
	cell := &s.grid[row][col]
	if cell.IsRevealed {
		return Event{}
	}

	s.timerRunning = true

	if s.mode == ModeFlag {
		cell.IsFlagged = !cell.IsFlagged
		if cell.IsFlagged {
			s.remainingFlags--
		} else {
			s.remainingFlags++
		}
		return Event{}
	}

	if cell.HasMine {
		s.losing = &point{row, col}
		s.finish(Lost)
		return Event{Kind: EventLost, ElapsedSeconds: s.elapsed}
	}

	RevealCell(s.grid, row, col)
	if !s.grid.Cleared() {
		return Event{}
	}

	s.finish(Won)
	best := s.elapsed
	if s.tracker != nil {
		best = s.tracker.Record(s.elapsed)
	}
	return Event{Kind: EventWon, ElapsedSeconds: s.elapsed, BestSeconds: best}
}

func (s *GameState) finish(status Status) {
	s.status = status
	s.timerRunning = false
	RevealAll(s.grid)
}

// ToggleMode switches between revealing and flagging. It is allowed at any
// time and touches nothing else.
func (s *GameState) ToggleMode() {
	if s.mode == ModeReveal {
		s.mode = ModeFlag
	} else {
		s.mode = ModeReveal
	}
}

// Tick advances the clock by one second while it is running.
func (s *GameState) Tick() {
	if s.timerRunning {
		s.elapsed++
	}
}

func (s *GameState) Params() GameParams {
	return s.params
}

func (s *GameState) Size() int {
	return s.grid.Size()
}

func (s *GameState) Status() Status {
	return s.status
}

func (s *GameState) Over() bool {
	return s.status != InProgress
}

func (s *GameState) ElapsedSeconds() int {
	return s.elapsed
}

func (s *GameState) TimerRunning() bool {
	return s.timerRunning
}

func (s *GameState) Mode() Mode {
	return s.mode
}

func (s *GameState) RemainingFlags() int {
	return s.remainingFlags
}

// Cell returns a copy of the cell at row:col.
func (s *GameState) Cell(row, col int) (Cell, bool) {
	if !s.grid.InBounds(row, col) {
		return Cell{}, false
	}
	return s.grid[row][col], true
}

// Grid returns a copy of the board.
func (s *GameState) Grid() Grid {
	return s.grid.Clone()
}

// LosingCell returns the mine that ended a lost game.
func (s *GameState) LosingCell() (row, col int, ok bool) {
	if s.losing == nil {
		return 0, 0, false
	}
	return s.losing.row, s.losing.col, true
}
