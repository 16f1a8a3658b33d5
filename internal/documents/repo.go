package documents

import "context"

// DocumentsRepo persists document metadata. Deleted documents are invisible
// to every read.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, ownerID, documentID string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error)
	// Delete hides a document. It returns ErrNotFound when the owner has no such live document.
	Delete(ctx context.Context, ownerID, documentID string) error
}
