package documents

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Document is an uploaded legal document owned by a user or guest.
type Document struct {
	ID              string
	OwnerID         string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	// Checksum is the hex SHA-256 of the stored content.
	Checksum        string
	CreatedAt       time.Time
}
