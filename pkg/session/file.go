package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps each session as a JSON file in one directory. It has no
// capacity limit.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
	ttl     time.Duration
	now     func() time.Time
}

// NewFileStore opens (and creates) a session directory. A zero ttl uses
// DefaultTTL.
func NewFileStore(baseDir string, ttl time.Duration) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("session dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	_, ttl = limits(0, ttl)
	return &FileStore{baseDir: baseDir, ttl: ttl, now: time.Now}, nil
}

// Path returns the session directory.
func (f *FileStore) Path() string { return f.baseDir }

// sessionPath rejects ids that are not UUIDs so that an id can never
// address a file outside baseDir.
func (f *FileStore) sessionPath(id string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return filepath.Join(f.baseDir, id+".json"), true
}

// Get implements [Store].
func (f *FileStore) Get(_ context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.sessionPath(id)
	if !ok {
		return nil, notFound(id)
	}
	s, err := readSessionFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	now := f.now()
	if s.IsExpired(now) {
		os.Remove(path)
		return nil, notFound(id)
	}
	s.ExpiresAt = now.Add(f.ttl)
	if err := writeSessionFile(path, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Put implements [Store].
func (f *FileStore) Put(_ context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.sessionPath(s.ID)
	if !ok {
		return fmt.Errorf("invalid session id %q", s.ID)
	}
	s.ExpiresAt = f.now().Add(f.ttl)
	return writeSessionFile(path, s)
}

// Delete implements [Store].
func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.sessionPath(id)
	if !ok {
		return notFound(id)
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Cleanup implements [Store]. Unreadable files are removed as well.
func (f *FileStore) Cleanup(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	now := f.now()
	n := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(f.baseDir, e.Name())
		s, err := readSessionFile(path)
		if err == nil && !s.IsExpired(now) {
			continue
		}
		if os.Remove(path) == nil {
			n++
		}
	}
	return n, nil
}

// Close implements [Store].
func (f *FileStore) Close(context.Context) error { return nil }

func readSessionFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

func writeSessionFile(path string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
