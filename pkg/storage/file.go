package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStorage stores every key as its own file under a base directory.
// Writes go to a temporary file first and are renamed into place, so a crash
// never leaves a half-written value behind.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates the base directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("%w: file storage directory is required", ErrInvalidDSN)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the base directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

func (s *FileStorage) GetItem(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (s *FileStorage) SetItem(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStorage) RemoveItem(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

// path maps a key to a file name. Keys are path-escaped so separators like
// ':' and '/' never leave the base directory.
func (s *FileStorage) path(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	name := url.PathEscape(key)
	name = strings.ReplaceAll(name, ":", "%3A")
	if name == "." || name == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, name+".json"), nil
}
