package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
)

const (
	tmpSuffix       = ".tmp"
	backupSuffix    = ".backup"
	filePermissions = 0o644
)

// FileStore keeps the collection in one JSON file.
type FileStore struct {
	path      string
	backupDir string
}

// NewFileStore returns a store for path. Backups go to backupDir, or to
// a "backup" directory next to path when backupDir is empty.
func NewFileStore(path, backupDir string) *FileStore {
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(path), "backup")
	}
	return &FileStore{path: path, backupDir: backupDir}
}

// Path returns the data file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the collection; a missing file is an empty collection.
func (s *FileStore) Load(_ context.Context) ([]model.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Event{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decode(data)
}

// Save writes the collection to a temp file and renames it over the data
// file, so readers see either the old or the new document.
func (s *FileStore) Save(_ context.Context, events []model.Event) error {
	data, err := encode(events)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmpFile := s.path + tmpSuffix
	if err := os.WriteFile(tmpFile, data, filePermissions); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		if rmErr := os.Remove(tmpFile); rmErr != nil {
			logging.Error("failed to remove temp file", rmErr, "path", tmpFile)
		}
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Backup copies the data file to <backupDir>/<unix>_<name>.backup.
func (s *FileStore) Backup(_ context.Context, now time.Time) (string, error) {
	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Error("error closing data file", err, "path", s.path)
		}
	}()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s%s", now.Unix(), filepath.Base(s.path), backupSuffix)
	dstPath := filepath.Join(s.backupDir, name)
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return dstPath, nil
}
