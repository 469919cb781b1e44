package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// FileStore keeps the history as a JSON list in <dir>/<key>.json.
// A missing file reads as an empty history.
type FileStore struct {
	path string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return &FileStore{path: filepath.Join(dir, HistoryKey+".json")}, nil
}

func (s *FileStore) LoadHistory(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", weather.ErrStorageUnavailable, s.path, err)
	}
	return entries, nil
}

// SaveHistory writes through a temp file and rename so readers never see a
// partial document.
func (s *FileStore) SaveHistory(_ context.Context, entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), HistoryKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileStore) ClearHistory(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return nil
}
