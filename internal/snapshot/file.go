package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aryodp/edgegate/internal/domain"
)

// FileStore persists the snapshot as a JSON file on local disk.
// This is the default backend.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed snapshot store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the snapshot file. A missing file returns
// domain.ErrNoSnapshot; a corrupt file returns a parse error. The
// caller treats both the same way (start empty).
func (s *FileStore) Load(_ context.Context) (*domain.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if env.Data == nil {
		return nil, domain.ErrNoSnapshot
	}

	return env.dataset(), nil
}

// Save writes the snapshot via a temp file and rename, so a crash
// mid-write never leaves a half-written snapshot behind.
func (s *FileStore) Save(_ context.Context, ds *domain.Dataset) error {
	data, err := json.MarshalIndent(wrap(ds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
