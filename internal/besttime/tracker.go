package besttime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tracker is the best time of one board configuration. It is loaded from a
// [Store] once and written back whenever a completion strictly improves it.
// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	board   string
	best    int
	set     bool
	store   Store
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewTracker(
	ctx context.Context,
	store Store,
	board string,
	timeout time.Duration,
	log logrus.FieldLogger,
) (*Tracker, error) {
	t := &Tracker{
		board:   board,
		store:   store,
		timeout: timeout,
		log:     log.WithField("board", board),
	}
	seconds, err := store.Get(ctx, board)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		t.best, t.set = seconds, true
	}
	return t, nil
}

func (t *Tracker) Board() string {
	return t.board
}

// Best returns the recorded minimum, ok is false while no game was won.
func (t *Tracker) Best() (seconds int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.best, t.set
}

// RecordCompletion registers a won game. The minimum only moves when seconds
// is strictly lower than it, or when nothing was recorded yet. When the store
// already holds a lower time, written by another process, that time is
// adopted instead. A failed write is logged and the in-memory minimum is
// kept.
func (t *Tracker) RecordCompletion(seconds int) (best int, improved bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.set && seconds >= t.best {
		return t.best, false
	}

	ctx := context.Background()
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	stored, err := t.store.Set(ctx, t.board, seconds)
	switch {
	case errors.Is(err, ErrRejected):
		t.log.WithError(err).Warn("best time rejected")
		return t.best, false
	case err != nil:
		t.log.WithError(err).Error("unable to persist best time")
	case stored < seconds:
		t.best, t.set = stored, true
		t.log.WithField("seconds", stored).Info("lower best time found in store")
		return t.best, false
	}

	t.best, t.set = seconds, true
	t.log.WithField("seconds", seconds).Info("new best time")
	return t.best, true
}

// [Tracker] implements [mines.BestTimeRecorder]
func (t *Tracker) Record(seconds int) (best int) {
	best, _ = t.RecordCompletion(seconds)
	return
}
