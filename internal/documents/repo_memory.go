package documents

import (
	"context"
	"sort"
	"sync"

	"legal-backend/internal/shared/pagination"
)

// MemoryRepo keeps documents in process memory, keyed by owner then ID.
type MemoryRepo struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byOwner: make(map[string]map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs, ok := r.byOwner[doc.OwnerID]
	if !ok {
		docs = make(map[string]Document)
		r.byOwner[doc.OwnerID] = docs
	}
	docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byOwner[ownerID][documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByOwner mirrors PGRepo paging: newest first, paged by pagination.Clamp.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = pagination.Clamp(limit, offset, pagination.MaxRepoLimit)

	r.mu.RLock()
	docs := make([]Document, 0, len(r.byOwner[ownerID]))
	for _, doc := range r.byOwner[ownerID] {
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if offset >= len(docs) {
		return []Document{}, nil
	}
	return docs[offset:min(offset+limit, len(docs))], nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOwner[ownerID][documentID]; !ok {
		return ErrNotFound
	}
	delete(r.byOwner[ownerID], documentID)
	return nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
