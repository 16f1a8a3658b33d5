package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
	now   func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Upload streams the file into object storage, hashing it on the way, and records the document.
func (s *Service) Upload(ctx context.Context, ownerID, fileName, mimeType string, r io.Reader) (Document, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(fileName) == "" {
		return Document{}, ErrInvalidInput
	}

	hash := sha256.New()
	storageKey, size, err := s.Store.Save(ctx, ownerID, fileName, mimeType, io.TeeReader(r, hash))
	if err != nil {
		return Document{}, fmt.Errorf("save object: %w", err)
	}

	doc := Document{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.Store.Provider(),
		StorageKey:      storageKey,
		Checksum:        hex.EncodeToString(hash.Sum(nil)),
		CreatedAt:       s.clock(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	telemetry.Info("document.stored", map[string]any{
		"document_id":      doc.ID,
		"user_id":          ownerID,
		"size_bytes":       size,
		"storage_provider": doc.StorageProvider,
	})
	return doc, nil
}

// Save stores an in-memory upload and returns its document ID.
func (s *Service) Save(ctx context.Context, ownerID, fileName, contentType string, content []byte) (string, error) {
	doc, err := s.Upload(ctx, ownerID, fileName, contentType, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Get returns one document owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	if ownerID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, documentID)
}

// Open returns the document metadata and a reader over its stored content.
func (s *Service) Open(ctx context.Context, ownerID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, ownerID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, fmt.Errorf("open object: %w", err)
	}
	return doc, rc, nil
}

// List returns documents for an owner ordered newest-first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Delete hides a document from its owner. The stored object is retained.
func (s *Service) Delete(ctx context.Context, ownerID, documentID string) error {
	if ownerID == "" || documentID == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.Delete(ctx, ownerID, documentID); err != nil {
		return err
	}
	telemetry.Info("document.deleted", map[string]any{"document_id": documentID, "user_id": ownerID})
	return nil
}
