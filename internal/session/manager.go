package session

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var ErrNotFound = errors.New("session not found")

// Manager keeps the live sessions of a server, all playing the same board
// configuration and sharing one best time recorder. Sessions are closed and
// forgotten once their token expires.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	params  mines.GameParams
	tracker mines.BestTimeRecorder
	tokens  *Tokens
	opts    Options
	log     logrus.FieldLogger
}

func NewManager(
	params mines.GameParams,
	tracker mines.BestTimeRecorder,
	tokens *Tokens,
	opts Options,
) *Manager {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = min(tokens.lifetime, time.Minute)
		if opts.ReapInterval <= 0 {
			opts.ReapInterval = time.Minute
		}
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		params:   params,
		tracker:  tracker,
		tokens:   tokens,
		opts:     opts,
		log:      opts.Log,
	}
	go m.runReaper(opts.ReapInterval)
	return m
}

func (m *Manager) Params() mines.GameParams {
	return m.params
}

func newID() string {
	return strconv.FormatUint(rand.Uint64(), 36)
}

// Create starts a new game and returns its session with an access token.
func (m *Manager) Create() (*Session, string, error) {
	game, err := mines.NewGame(m.params, mines.NewRand(), m.tracker)
	if err != nil {
		return nil, "", err
	}

	now := m.tokens.now()

	m.mu.Lock()
	id := newID()
	for m.sessions[id] != nil {
		id = newID()
	}
	session := New(id, game, m.opts)
	session.expires = m.tokens.Expiry(now)
	m.sessions[id] = session
	m.mu.Unlock()

	token, err := m.tokens.signAt(id, now)
	if err != nil {
		m.Remove(id)
		return nil, "", err
	}
	m.log.WithField("session", id).Debug("session created")
	return session, token, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// Authorize returns session id when token was issued for it.
func (m *Manager) Authorize(id, token string) (*Session, error) {
	subject, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if subject != id {
		return nil, ErrInvalidToken
	}
	return m.Get(id)
}

// Tokens returns the signer sessions are authorized with.
func (m *Manager) Tokens() *Tokens {
	return m.tokens
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	session.Close()
	m.log.WithField("session", id).Debug("session removed")
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the reaper and closes every session.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.done
	})

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// reap closes the sessions whose token is expired at now and returns how many
// were closed.
func (m *Manager) reap(now time.Time) int {
	var expired []*Session
	m.mu.Lock()
	for id, session := range m.sessions {
		if !now.Before(session.expires) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
		m.log.WithField("session", session.ID).Debug("session expired")
	}
	return len(expired)
}

func (m *Manager) runReaper(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if n := m.reap(m.tokens.now()); n > 0 {
				m.log.WithField("count", n).Info("expired sessions reaped")
			}
		}
	}
}
