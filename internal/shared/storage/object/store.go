package object

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving uploaded documents.
type ObjectStore interface {
	Save(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Provider names the backend recorded alongside each document.
	Provider() string
}

// NormalizePrefix trims whitespace and surrounding slashes from a key prefix.
func NormalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// JoinKey joins a bucket prefix and a storage key with exactly one slash.
func JoinKey(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
