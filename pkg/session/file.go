package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
)

const latestFile = "latest"

// FileStore keeps entries as JSON files in a directory, with a "latest"
// file holding the id of the most recent save.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store in baseDir. An empty baseDir means
// ~/.config/axnarrate/sessions/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns ~/.config/axnarrate/sessions.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "axnarrate", "sessions"), nil
}

func (s *FileStore) entryPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, e *Entry) error {
	if err := apperrors.ValidateSessionID(e.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.entryPath(e.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, latestFile), []byte(e.ID), 0o600); err != nil {
		return fmt.Errorf("write latest pointer: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Entry, error) {
	if err := apperrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

// read loads an entry; the caller holds the lock.
func (s *FileStore) read(id string) (*Entry, error) {
	data, err := os.ReadFile(s.entryPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	if e.IsExpired() {
		return nil, fmt.Errorf("%w: %s expired", ErrNotFound, id)
	}
	return &e, nil
}

func (s *FileStore) Latest(_ context.Context) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := os.ReadFile(filepath.Join(s.baseDir, latestFile))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read latest pointer: %w", err)
	}
	return s.read(strings.TrimSpace(string(id)))
}

func (s *FileStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var out []*Entry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		e, err := s.read(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		e.Data = nil
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := apperrors.ValidateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.entryPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	latest := filepath.Join(s.baseDir, latestFile)
	if cur, err := os.ReadFile(latest); err == nil && strings.TrimSpace(string(cur)) == id {
		_ = os.Remove(latest)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	removed := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, f.Name())); err == nil {
			removed++
		}
	}
	_ = os.Remove(filepath.Join(s.baseDir, latestFile))
	return removed, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding session files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
