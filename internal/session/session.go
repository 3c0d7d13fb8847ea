// Package session drives one game per player: it serialises events onto the
// engine and runs the game clock while the engine says it is running.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/snapshot"
)

var ErrClosed = errors.New("session closed")

type Options struct {
	// TickInterval is the period of the game clock, one second by default.
	TickInterval time.Duration
	// ReapInterval is how often a [Manager] closes sessions whose token
	// expired. Defaults to the token lifetime, at most a minute.
	ReapInterval time.Duration
	// Snapshots receives the final board of every finished game, when set.
	Snapshots *snapshot.Saver
	Log       logrus.FieldLogger
}

// Session owns a game and the ticker that advances its clock. All methods are
// safe for concurrent use.
type Session struct {
	ID string
	// expires is set by [Manager] before the session is shared.
	expires time.Time

	mu       sync.Mutex
	game     *mines.GameState
	closed   bool
	stopTick chan struct{}
	// generation is bumped whenever a ticker is started or stopped, a tick
	// carrying an older generation is dropped.
	generation uint64
	subs       map[chan struct{}]struct{}

	interval  time.Duration
	snapshots *snapshot.Saver
	log       logrus.FieldLogger
}

func New(id string, game *mines.GameState, opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Session{
		ID:        id,
		game:      game,
		subs:      make(map[chan struct{}]struct{}),
		interval:  opts.TickInterval,
		snapshots: opts.Snapshots,
		log:       opts.Log.WithField("session", id),
	}
}

// Act applies a cell action in the current mode.
func (s *Session) Act(row, col int) (mines.Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return mines.Event{}, ErrClosed
	}
	event := s.game.OnCellAction(row, col)
	s.reconcile()
	s.notify()

	var final *snapshot.Snapshot
	if event.GameOver() {
		s.log.WithFields(logrus.Fields{
			"row":     row,
			"col":     col,
			"status":  s.game.Status(),
			"elapsed": event.ElapsedSeconds,
			"best":    event.BestSeconds,
		}).Info("game over")
		if s.snapshots != nil {
			final = s.snapshots.Capture(s.game)
		}
	}
	s.mu.Unlock()

	if final != nil {
		s.saveSnapshot(final)
	}
	return event, nil
}

// saveSnapshot writes outside of the session lock.
func (s *Session) saveSnapshot(final *snapshot.Snapshot) {
	path, err := s.snapshots.Save(final)
	if err != nil {
		s.log.WithError(err).Error("unable to save snapshot")
		return
	}
	s.log.WithField("path", path).Debug("snapshot saved")
}

func (s *Session) ToggleMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.game.ToggleMode()
	s.notify()
	return nil
}

// Restart replaces the game with a fresh one of the same configuration.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	next, err := s.game.Restart()
	if err != nil {
		return err
	}
	s.game = next
	s.reconcile()
	s.notify()
	s.log.Debug("game restarted")
	return nil
}

// View calls fn with the game while holding the session lock. fn must not
// keep the game nor call back into the session.
func (s *Session) View(fn func(game *mines.GameState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Subscribe returns a channel that receives a value after every change of the
// game, ticks included. Notifications coalesce while the channel is full. The
// channel is closed by cancel or when the session closes.
func (s *Session) Subscribe() (updates <-chan struct{}, cancel func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.subs[ch] = struct{}{}
	}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
}

func (s *Session) notify() {
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops the clock and releases subscribers. Later calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTicker()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// reconcile starts the ticker when the game clock starts running and stops it
// when the clock stops, so at most one ticker exists per session.
func (s *Session) reconcile() {
	running := s.game.TimerRunning()
	switch {
	case running && s.stopTick == nil:
		s.startTicker()
	case !running && s.stopTick != nil:
		s.stopTicker()
	}
}

func (s *Session) startTicker() {
	s.generation++
	stop := make(chan struct{})
	s.stopTick = stop
	go s.runTicker(s.generation, stop)
}

func (s *Session) stopTicker() {
	if s.stopTick == nil {
		return
	}
	close(s.stopTick)
	s.stopTick = nil
	s.generation++
}

func (s *Session) runTicker(generation uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(generation)
		}
	}
}

func (s *Session) tick(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation || s.closed {
		return
	}
	s.game.Tick()
	s.notify()
}

// ticking reports whether a ticker is currently running.
func (s *Session) ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopTick != nil
}
