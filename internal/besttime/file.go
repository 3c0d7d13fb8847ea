package besttime

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all best times in a single gob-encoded file. Writes go to a
// temporary file first and replace the old one by rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]int, error) {
	times := make(map[string]int)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return times, nil
	} else if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&times); err != nil {
		return nil, fmt.Errorf("corrupt best time file %s: %w", s.path, err)
	}
	return times, nil
}

func (s *FileStore) Get(_ context.Context, board string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, err := s.load()
	if err != nil {
		return 0, err
	}
	seconds, ok := times[board]
	if !ok {
		return 0, ErrNotFound
	}
	return seconds, nil
}

func (s *FileStore) Set(_ context.Context, board string, seconds int) (int, error) {
	if seconds < 0 {
		return 0, ErrRejected
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	times, err := s.load()
	if err != nil {
		return 0, err
	}
	if stored, ok := times[board]; ok && stored <= seconds {
		return stored, nil
	}
	times[board] = seconds
	if err := s.save(times); err != nil {
		return 0, err
	}
	return seconds, nil
}

func (s *FileStore) List(context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Delete(_ context.Context, board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := times[board]; !ok {
		return ErrNotFound
	}
	delete(times, board)
	return s.save(times)
}

func (s *FileStore) save(times map[string]int) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(times); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.path)
}
