package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidFileName is returned for names that are empty or a bare dot entry.
var ErrInvalidFileName = errors.New("invalid file name")

// OwnerKey returns a path-safe, stable identifier for a user ID.
func OwnerKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName maps path separators to '_' and strips control characters,
// so the result is always a single path segment.
func SanitizeFileName(name string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" || s == "." || s == ".." {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// BlobKey builds a collision-resistant storage key of the form
// <owner>/<uuid>-<sanitized name>.
func BlobKey(userID, fileName string) (string, error) {
	clean, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerKey(userID), uuid.NewString()+"-"+clean), nil
}
