// Package state persists the most recent check result so it survives restarts
// and can be served over HTTP.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// ErrNoState is returned by Latest when nothing has been saved yet.
var ErrNoState = errors.New("no check result saved")

// FileStore keeps the latest check result as one indented JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path, creating its parent directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Save replaces the stored result. The file is written to a temporary
// sibling and renamed so readers never see a partial document.
func (s *FileStore) Save(_ context.Context, res domain.CheckResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Latest returns the stored result, or ErrNoState if the file does not exist.
func (s *FileStore) Latest(_ context.Context) (domain.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.CheckResult{}, ErrNoState
	}
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("read state: %w", err)
	}

	var res domain.CheckResult
	if err := json.Unmarshal(data, &res); err != nil {
		return domain.CheckResult{}, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	return res, nil
}

func (s *FileStore) Close() error { return nil }
