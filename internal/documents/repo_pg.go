package documents

import (
	"context"
	"database/sql"
	"errors"

	"legal-backend/internal/shared/pagination"
)

// PGRepo stores document metadata in the documents table.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, owner_id, file_name, mime_type, size_bytes, storage_provider, storage_key, checksum, created_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	if doc.StorageProvider == "" {
		doc.StorageProvider = "local"
	}
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, doc.OwnerID, doc.FileName, doc.MimeType, doc.SizeBytes,
		doc.StorageProvider, nullString(doc.StorageKey), nullString(doc.Checksum), doc.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, ownerID, documentID string) (Document, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL`, ownerID, documentID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ListByOwner returns live documents newest-first, paged by pagination.Clamp.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	limit, offset = pagination.Clamp(limit, offset, pagination.MaxRepoLimit)

	rows, err := r.DB.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE owner_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete soft-deletes by stamping deleted_at. Stored content is kept.
func (r *PGRepo) Delete(ctx context.Context, ownerID, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE documents SET deleted_at = now()
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL`, ownerID, documentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var provider, storageKey, checksum sql.NullString
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.FileName, &doc.MimeType, &doc.SizeBytes,
		&provider, &storageKey, &checksum, &doc.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	doc.StorageProvider = provider.String
	doc.StorageKey = storageKey.String
	doc.Checksum = checksum.String
	return doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ DocumentsRepo = (*PGRepo)(nil)
