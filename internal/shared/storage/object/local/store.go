package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"study-assistant/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. Objects are served
// by the router under publicPath.
type Store struct {
	baseDir    string
	publicPath string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir, publicPath string) *Store {
	return &Store{baseDir: baseDir, publicPath: publicPath}
}

// Save writes the reader to disk at key, creating parent directories as needed.
func (s *Store) Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return object.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return object.Object{}, fmt.Errorf("write body: %w", err)
	}
	return object.Object{
		Key:  clean,
		Size: written,
		URL:  object.JoinURL(s.publicPath, clean),
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
}

var _ object.ObjectStore = (*Store)(nil)
