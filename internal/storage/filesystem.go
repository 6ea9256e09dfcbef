// Package storage persists derived images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dataprep/internal/domain"
)

// Sink writes one encoded image named name under dir and returns the
// location it was written to.
type Sink interface {
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
}

// FileStore persists images onto the local filesystem. Missing parent
// directories are created lazily: the first write fails, the directory is
// created, and the write is retried exactly once.
type FileStore struct {
	mkdirAll  func(path string, perm fs.FileMode) error
	writeFile func(name string, data []byte, perm fs.FileMode) error
}

func NewFileStore() *FileStore {
	return &FileStore{mkdirAll: os.MkdirAll, writeFile: os.WriteFile}
}

func (s *FileStore) Save(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanName, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(dir, cleanName)
	err = s.writeFile(fullPath, data, 0o644)
	if errors.Is(err, fs.ErrNotExist) {
		// MkdirAll tolerates a concurrent creator, so racing tickets are fine.
		if mkErr := s.mkdirAll(dir, 0o755); mkErr != nil {
			return "", fmt.Errorf("%w: ensure directory %s: %v", domain.ErrPersist, dir, mkErr)
		}
		err = s.writeFile(fullPath, data, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrPersist, fullPath, err)
	}
	return fullPath, nil
}

// sanitizeName keeps output names inside their directory.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrPersist, name)
	}
	return name, nil
}

var _ Sink = (*FileStore)(nil)
