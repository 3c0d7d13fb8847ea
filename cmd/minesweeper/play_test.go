package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/besttime"
	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	os.Exit(m.Run())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
		err  string
	}{
		{"a 1 2", command{name: "a", row: 1, col: 2}, ""},
		{"  m ", command{name: "m"}, ""},
		{"n", command{name: "n"}, ""},
		{"q", command{name: "q"}, ""},
		{"", command{}, "empty command"},
		{"a 1", command{}, "invalid number of arguments"},
		{"m 1", command{}, "invalid number of arguments"},
		{"a x 1", command{}, "row must be an int"},
		{"a 1 y", command{}, "col must be an int"},
		{"z", command{}, `unknown command "z", h for help`},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			got, err := parseCommand(test.line)
			if test.err != "" {
				assert.EqualError(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestFormatBest(t *testing.T) {
	assert.Equal(t, "N/A", formatBest(0, false))
	assert.Equal(t, "0s", formatBest(0, true))
	assert.Equal(t, "73s", formatBest(73, true))
}

func newGame(t *testing.T, params mines.GameParams) *mines.GameState {
	t.Helper()
	game, err := mines.NewGame(params, rand.New(rand.NewPCG(1, 2)), nil)
	require.NoError(t, err)
	return game
}

func TestRenderGame(t *testing.T) {
	game := newGame(t, mines.GameParams{Size: 3, MineCount: 0})

	var b strings.Builder
	renderGame(&b, game, 0, false)
	assert.Equal(t, strings.Join([]string{
		"mode: reveal  flags: 0  time: 0s  best: N/A",
		"  0 1 2",
		"0 # # #",
		"1 # # #",
		"2 # # #",
		"",
	}, "\n"), b.String())

	game.OnCellAction(0, 0)
	b.Reset()
	renderGame(&b, game, 4, true)
	assert.Contains(t, b.String(), "won  flags: 0  time: 0s  best: 4s\n")
	assert.Contains(t, b.String(), "0 . . .\n")
}

func TestRenderLostGame(t *testing.T) {
	game := newGame(t, mines.GameParams{Size: 12, MineCount: 20})
	var mineRow, mineCol int
	for row, cells := range game.Grid() {
		for col, cell := range cells {
			if cell.HasMine {
				mineRow, mineCol = row, col
			}
		}
	}
	game.OnCellAction(mineRow, mineCol)

	var b strings.Builder
	renderGame(&b, game, 0, false)
	lines := strings.Split(b.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "lost"))
	assert.Equal(t, "    0  1  2  3  4  5  6  7  8  9 10 11", lines[1])
	assert.Equal(t, 1, strings.Count(b.String(), "X"))
	assert.NotContains(t, b.String(), "#")
}

func TestPlayerRun(t *testing.T) {
	log, _ := test.NewNullLogger()
	tracker, err := besttime.NewTracker(
		context.Background(), besttime.NewMemoryStore(), "3x3:0", 0, log,
	)
	require.NoError(t, err)
	game, err := mines.NewGame(mines.GameParams{Size: 3, MineCount: 0}, rand.New(rand.NewPCG(1, 2)), tracker)
	require.NoError(t, err)
	s := session.New("test", game, session.Options{TickInterval: time.Hour, Log: log})

	var out bytes.Buffer
	p := &player{session: s, best: tracker, out: &out}
	input := strings.NewReader("z\nm\nm\na 1 1\nq\na 0 0\n")
	require.NoError(t, p.Run(context.Background(), input))

	output := out.String()
	assert.Contains(t, output, "best: N/A")
	assert.Contains(t, output, `unknown command "z", h for help`)
	assert.Contains(t, output, "mode: flag")
	assert.Contains(t, output, "You won in 0s! Best time: 0s.")
	assert.Contains(t, output, "best: 0s")

	best, ok := tracker.Best()
	assert.True(t, ok)
	assert.Equal(t, 0, best)

	_, err = s.Act(0, 0)
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestSetupLogging(t *testing.T) {
	log := logrus.New()
	cfg := config.Default()

	require.NoError(t, setupLogging(log, cfg))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	cfg.Mode = "production"
	cfg.Log.File = t.TempDir() + "/minesweeper.log"
	require.NoError(t, setupLogging(log, cfg))
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Len(t, log.Hooks[logrus.InfoLevel], 1)

	log.Info("to file")
	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestListBestTimes(t *testing.T) {
	ctx := context.Background()
	store := besttime.NewMemoryStore()

	var b strings.Builder
	require.NoError(t, listBestTimes(ctx, &b, store))
	assert.Equal(t, "no games won yet\n", b.String())

	for board, seconds := range map[string]int{"16x16:40": 95, "10x10:10": 12, "legacy": 3} {
		_, err := store.Set(ctx, board, seconds)
		require.NoError(t, err)
	}

	b.Reset()
	require.NoError(t, listBestTimes(ctx, &b, store))
	assert.Equal(t, strings.Join([]string{
		"BOARD     SIZE   MINES  BEST",
		"10x10:10  10x10  10     12s",
		"16x16:40  16x16  40     95s",
		"legacy    ?      ?      3s",
		"",
	}, "\n"), b.String())
}
