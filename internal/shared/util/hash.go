package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"time"
)

// HashOwnerKey returns a path-safe identifier for an owner ID.
func HashOwnerKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ObjectKey builds a storage key namespaced by owner with a random prefix so
// repeated uploads of the same file name never collide.
func ObjectKey(ownerID, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(HashOwnerKey(ownerID), RandomID()+"_"+name), nil
}

// RandomID returns 32 hex characters, falling back to the clock if the system RNG fails.
func RandomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
