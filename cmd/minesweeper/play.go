package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/app"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

const playHelp = `commands:
  a <row> <col>  act on a cell in the current mode
  m              toggle between reveal and flag mode
  n              new game
  q              quit`

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in this terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			context.Background(),
			os.Interrupt, syscall.SIGTERM,
		)
		defer stop()

		// the board owns the terminal, logs go to the file hook only
		if cfg.Log.File != "" {
			log.SetOutput(io.Discard)
		}

		tracker, pool, err := app.NewTracker(ctx, cfg, log)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}

		game, err := mines.NewGame(cfg.Board, nil, tracker)
		if err != nil {
			return err
		}
		s := session.New("local", game, session.Options{
			TickInterval: cfg.TickInterval.Duration,
			Snapshots:    app.Snapshots(cfg),
			Log:          log,
		})

		p := &player{session: s, best: tracker, out: os.Stdout, clear: true}
		return p.Run(ctx, os.Stdin)
	},
}

type bestTime interface {
	Best() (seconds int, ok bool)
}

// player is the terminal presentation of one session. It redraws the board
// after every change of the game.
type player struct {
	session *session.Session
	best    bestTime
	clear   bool

	mu      sync.Mutex
	out     io.Writer
	message string
}

type command struct {
	name     string
	row, col int
}

var errQuit = errors.New("quit")

func parseCommand(line string) (command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return command{}, errors.New("empty command")
	}
	c := command{name: parts[0]}
	switch c.name {
	case "m", "n", "q", "h":
		if len(parts) != 1 {
			return command{}, errors.New("invalid number of arguments")
		}
	case "a":
		if len(parts) != 3 {
			return command{}, errors.New("invalid number of arguments")
		}
		var err error
		if c.row, err = strconv.Atoi(parts[1]); err != nil {
			return command{}, errors.New("row must be an int")
		}
		if c.col, err = strconv.Atoi(parts[2]); err != nil {
			return command{}, errors.New("col must be an int")
		}
	default:
		return command{}, fmt.Errorf("unknown command %q, h for help", c.name)
	}
	return c, nil
}

func (p *player) execute(c command) (string, error) {
	switch c.name {
	case "a":
		event, err := p.session.Act(c.row, c.col)
		if err != nil {
			return "", err
		}
		switch event.Kind {
		case mines.EventWon:
			return fmt.Sprintf(
				"You won in %ds! Best time: %ds. n for a new game",
				event.ElapsedSeconds, event.BestSeconds,
			), nil
		case mines.EventLost:
			return "Boom! n for a new game", nil
		}
		return "", nil
	case "m":
		return "", p.session.ToggleMode()
	case "n":
		return "", p.session.Restart()
	case "h":
		return playHelp, nil
	case "q":
		return "", errQuit
	}
	return "", fmt.Errorf("unknown command %q", c.name)
}

// handle runs one input line, it reports false once the player quits.
func (p *player) handle(line string) bool {
	var message string
	c, err := parseCommand(line)
	if err == nil {
		message, err = p.execute(c)
	}
	switch {
	case errors.Is(err, errQuit), errors.Is(err, session.ErrClosed):
		return false
	case err != nil:
		message = err.Error()
	}

	p.mu.Lock()
	p.message = message
	p.mu.Unlock()
	p.render()
	return true
}

func (p *player) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	if p.clear {
		b.WriteString("\033[H\033[2J")
	}
	best, ok := p.best.Best()
	p.session.View(func(game *mines.GameState) {
		renderGame(&b, game, best, ok)
	})
	if p.message != "" {
		b.WriteString(p.message)
		b.WriteByte('\n')
	}
	b.WriteString("> ")
	io.WriteString(p.out, b.String())
}

// Run reads commands from in until it ends, the player quits or ctx is done.
func (p *player) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	updates, cancel := p.session.Subscribe()
	defer cancel()
	p.render()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.session.Close()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case line, ok := <-lines:
				if !ok || !p.handle(line) {
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		for range updates {
			p.render()
		}
		return nil
	})
	err := g.Wait()
	io.WriteString(p.out, "\n")
	return err
}
