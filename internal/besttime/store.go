// Package besttime keeps the lowest winning time per board configuration.
package besttime

import (
	"context"
	"errors"
	"maps"
	"sync"
)

var (
	ErrNotFound = errors.New("best time not found")
	ErrRejected = errors.New("best time rejected by store")
)

// Store persists one best time per board key. Get returns [ErrNotFound] when
// nothing was recorded for board. Set keeps the lower of seconds and the time
// already stored, and returns the time stored after the write.
type Store interface {
	Get(ctx context.Context, board string) (seconds int, err error)
	Set(ctx context.Context, board string, seconds int) (best int, err error)
}

// Records is a [Store] that can also enumerate and forget boards.
type Records interface {
	Store
	List(ctx context.Context) (map[string]int, error)
	// Delete returns [ErrNotFound] when nothing was recorded for board.
	Delete(ctx context.Context, board string) error
}

type MemoryStore struct {
	mu    sync.Mutex
	times map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{times: make(map[string]int)}
}

func (s *MemoryStore) Get(_ context.Context, board string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seconds, ok := s.times[board]
	if !ok {
		return 0, ErrNotFound
	}
	return seconds, nil
}

func (s *MemoryStore) Set(_ context.Context, board string, seconds int) (int, error) {
	if seconds < 0 {
		return 0, ErrRejected
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.times[board]; ok && stored <= seconds {
		return stored, nil
	}
	s.times[board] = seconds
	return seconds, nil
}

func (s *MemoryStore) List(context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.times), nil
}

func (s *MemoryStore) Delete(_ context.Context, board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.times[board]; !ok {
		return ErrNotFound
	}
	delete(s.times, board)
	return nil
}
