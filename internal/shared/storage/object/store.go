package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a blob that has been written to a store.
type Object struct {
	Key  string
	Size int64
	URL  string
}

// ObjectStore defines the contract for saving and retrieving binary objects.
// Save takes the payload size when known, or -1.
type ObjectStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// CleanKey validates a slash-separated storage key and returns its canonical form.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(trimmed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// JoinURL joins a base URL and a key with exactly one slash between them.
func JoinURL(base, key string) string {
	b := strings.TrimRight(base, "/")
	k := strings.TrimLeft(key, "/")
	if b == "" {
		return "/" + k
	}
	return b + "/" + k
}

// CountingReader tracks the number of bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}
